package handler

import "github.com/tomwright01/dashboard/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Search  *SearchHandler
	Metric  *MetricHandler
	QC      *QCHandler
	Study   *StudyHandler
	Subject *SubjectHandler
	User    *UserHandler
	Health  *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, health *HealthHandler) *Handler {
	return &Handler{
		Search:  NewSearchHandler(svc.Search),
		Metric:  NewMetricHandler(svc.Metric, svc.Export),
		QC:      NewQCHandler(svc.QC, svc.Export),
		Study:   NewStudyHandler(svc.Study, svc.Subject),
		Subject: NewSubjectHandler(svc.Subject),
		User:    NewUserHandler(svc.User),
		Health:  health,
	}
}
