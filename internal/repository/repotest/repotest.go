// Package repotest 提供基于内存 sqlite 的测试数据库与固定测试数据
package repotest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tomwright01/dashboard/internal/model"
)

// Open 打开已完成建表的内存 sqlite 数据库
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// 内存库每个连接相互独立，固定为单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Fixture 固定测试数据的主键
//
//	S1: CMH（标签 S1，备用标签 SPN）、ZHH
//	S2: CMH
//	S1_CMH_0001_01      T1 已通过 / DTI 已标记 / T1 未审核且基线排除
//	S1_ZHH_0002_01      T1 黑名单
//	S2_CMH_0003_01      T1 已通过
//	S1_CMH_PHA_FBN0001  T1 已通过（体模）
type Fixture struct {
	S1, S2   model.Study
	CMH, ZHH model.Site
	T1, DTI  model.Scantype
	SNR, FA  model.Metrictype

	Session0001 model.Session
	Session0002 model.Session
	Session0003 model.Session
	PhantomSess model.Session

	ScanApproved    model.Scan // S1_CMH_0001_01_01_T1_02
	ScanFlagged     model.Scan // S1_CMH_0001_01_01_DTI_03
	ScanNew         model.Scan // S1_CMH_0001_01_01_T1_05，bl_comment 非空
	ScanBlacklisted model.Scan // S1_ZHH_0002_01_01_T1_02
	ScanOtherStudy  model.Scan // S2_CMH_0003_01_01_T1_02
	ScanPhantom     model.Scan // S1_CMH_PHA_FBN0001_01_T1_02

	Admin, Reader, SiteReader model.User
}

func ptr[T any](v T) *T { return &v }

// Seed 写入固定测试数据
func Seed(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	f := &Fixture{}
	create := func(v interface{}) {
		t.Helper()
		require.NoError(t, db.Create(v).Error)
	}

	f.S1 = model.Study{Code: "S1", Name: "Study One", Nickname: "ONE"}
	f.S2 = model.Study{Code: "S2", Name: "Study Two", Nickname: "TWO"}
	create(&f.S1)
	create(&f.S2)

	f.CMH = model.Site{Code: "CMH", Name: "CMH"}
	f.ZHH = model.Site{Code: "ZHH", Name: "ZHH"}
	create(&f.CMH)
	create(&f.ZHH)

	create(&model.StudySite{StudyID: f.S1.ID, SiteID: f.CMH.ID, Code: "S1"})
	create(&model.StudySite{StudyID: f.S1.ID, SiteID: f.ZHH.ID, Code: "S1"})
	create(&model.StudySite{StudyID: f.S2.ID, SiteID: f.CMH.ID, Code: "S2"})
	create(&model.AltStudyCode{StudyID: f.S1.ID, SiteID: f.CMH.ID, Code: "SPN"})

	f.T1 = model.Scantype{Name: "T1"}
	f.DTI = model.Scantype{Name: "DTI"}
	create(&f.T1)
	create(&f.DTI)
	create(&model.StudyScantype{StudyID: f.S1.ID, ScantypeID: f.T1.ID})
	create(&model.StudyScantype{StudyID: f.S1.ID, ScantypeID: f.DTI.ID})
	create(&model.StudyScantype{StudyID: f.S2.ID, ScantypeID: f.T1.ID})

	f.SNR = model.Metrictype{Name: "snr", ScantypeID: f.T1.ID}
	f.FA = model.Metrictype{Name: "fa", ScantypeID: f.DTI.ID}
	create(&f.SNR)
	create(&f.FA)

	timepoint := func(name string, site model.Site, phantom bool, studies ...model.Study) {
		t.Helper()
		create(&model.Timepoint{Name: name, BidsName: "sub-" + name, BidsSession: "01", IsPhantom: phantom, SiteID: site.ID})
		for _, s := range studies {
			create(&model.StudyTimepoint{StudyID: s.ID, Timepoint: name})
		}
	}
	timepoint("S1_CMH_0001_01", f.CMH, false, f.S1)
	timepoint("S1_ZHH_0002_01", f.ZHH, false, f.S1)
	timepoint("S2_CMH_0003_01", f.CMH, false, f.S2)
	timepoint("S1_CMH_PHA_FBN0001", f.CMH, true, f.S1)

	f.Session0001 = model.Session{Name: "S1_CMH_0001_01", Num: 1}
	f.Session0002 = model.Session{Name: "S1_ZHH_0002_01", Num: 1}
	f.Session0003 = model.Session{Name: "S2_CMH_0003_01", Num: 1}
	f.PhantomSess = model.Session{Name: "S1_CMH_PHA_FBN0001", Num: 1}
	create(&f.Session0001)
	create(&f.Session0002)
	create(&f.Session0003)
	create(&f.PhantomSess)

	scan := func(dst *model.Scan, name, tp, tag, desc string, sess model.Session, bl *string) {
		t.Helper()
		*dst = model.Scan{Name: name, BidsName: "bids-" + name, Timepoint: tp, Repeat: 1, Tag: tag, Description: desc, BlComment: bl}
		create(dst)
		create(&model.SessionScan{SessionID: sess.ID, ScanID: dst.ID})
	}
	scan(&f.ScanApproved, "S1_CMH_0001_01_01_T1_02", "S1_CMH_0001_01", "T1", "T1w MPRAGE", f.Session0001, nil)
	scan(&f.ScanFlagged, "S1_CMH_0001_01_01_DTI_03", "S1_CMH_0001_01", "DTI", "DTI 60 dir", f.Session0001, nil)
	scan(&f.ScanNew, "S1_CMH_0001_01_01_T1_05", "S1_CMH_0001_01", "T1", "T1w repeat", f.Session0001, ptr("excluded from baseline"))
	scan(&f.ScanBlacklisted, "S1_ZHH_0002_01_01_T1_02", "S1_ZHH_0002_01", "T1", "T1w MPRAGE", f.Session0002, nil)
	scan(&f.ScanOtherStudy, "S2_CMH_0003_01_01_T1_02", "S2_CMH_0003_01", "T1", "T1w MPRAGE", f.Session0003, nil)
	scan(&f.ScanPhantom, "S1_CMH_PHA_FBN0001_01_T1_02", "S1_CMH_PHA_FBN0001", "T1", "T1w phantom", f.PhantomSess, nil)

	create(&model.ScanChecklist{ScanID: f.ScanApproved.ID, Approved: ptr(true)})
	create(&model.ScanChecklist{ScanID: f.ScanFlagged.ID, Approved: ptr(true), Comment: ptr("Slight Motion")})
	create(&model.ScanChecklist{ScanID: f.ScanBlacklisted.ID, Approved: ptr(false), Comment: ptr("motion")})
	create(&model.ScanChecklist{ScanID: f.ScanOtherStudy.ID, Approved: ptr(true)})
	create(&model.ScanChecklist{ScanID: f.ScanPhantom.ID, Approved: ptr(true)})

	for i, s := range []model.Scan{f.ScanApproved, f.ScanNew, f.ScanBlacklisted, f.ScanOtherStudy, f.ScanPhantom} {
		create(&model.MetricValue{Value: float64(10 + i), MetrictypeID: f.SNR.ID, ScanID: s.ID})
	}
	create(&model.MetricValue{Value: 0.42, MetrictypeID: f.FA.ID, ScanID: f.ScanFlagged.ID})

	f.Admin = model.User{Username: "admin", FirstName: "Ada", LastName: "Admin", DashboardAdmin: true}
	f.Reader = model.User{Username: "reader", FirstName: "Rita", LastName: "Reader"}
	f.SiteReader = model.User{Username: "zhh_reader"}
	create(&f.Admin)
	create(&f.Reader)
	create(&f.SiteReader)
	create(&model.StudyUser{UserID: f.Reader.ID, StudyID: f.S1.ID})
	create(&model.StudyUser{UserID: f.SiteReader.ID, StudyID: f.S1.ID, SiteID: ptr(f.ZHH.ID)})

	return f
}
