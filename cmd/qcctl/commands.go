package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomwright01/dashboard/internal/dto"
	"github.com/tomwright01/dashboard/internal/filter"
	"github.com/tomwright01/dashboard/pkg/database"
)

type opener func() (*app, error)

// ────── search ──────

func newSearchCmd(open opener) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Resolve free text to subjects, sessions and scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			resp, err := a.svc.Search.Search(cmd.Context(), &dto.SearchRequest{Query: args[0], Type: kind})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&kind, "type", dto.SearchAll, "all | subjects | sessions | scans")
	return cmd
}

// ────── outstanding ──────

func newOutstandingCmd(open opener) *cobra.Command {
	var req dto.OutstandingRequest

	cmd := &cobra.Command{
		Use:   "outstanding",
		Short: "List scans that have not been reviewed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.svc.QC.OutstandingReviews(cmd.Context(), &req)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintln(cmd.OutOrStdout(), r.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&req.Study, "study", nil, "study codes")
	cmd.Flags().StringSliceVar(&req.Site, "site", nil, "site codes")
	return cmd
}

// ────── qc ──────

// qcFlags 三态开关：未设置时为 nil，交给服务层取默认值
type qcFlags struct {
	approved, flagged, blacklisted bool
	req                            dto.QCQueryRequest
}

func (f *qcFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.approved, "approved", true, "include approved scans")
	fs.BoolVar(&f.flagged, "flagged", true, "include flagged scans")
	fs.BoolVar(&f.blacklisted, "blacklisted", true, "include blacklisted scans")
	fs.BoolVar(&f.req.IncludeNew, "include-new", false, "include scans without a review")
	fs.BoolVar(&f.req.IncludePhantoms, "include-phantoms", false, "include phantom scans")
	fs.StringSliceVar(&f.req.Study, "study", nil, "study codes")
	fs.StringSliceVar(&f.req.Site, "site", nil, "site codes")
	fs.StringSliceVar(&f.req.Tag, "tag", nil, "scan type tags")
	fs.StringArrayVar(&f.req.Comment, "comment", nil, "comment substring, repeatable (commas are kept)")
	fs.BoolVar(&f.req.Sort, "sort", false, "sort by scan name")
}

func (f *qcFlags) request(cmd *cobra.Command) *dto.QCQueryRequest {
	req := f.req
	fs := cmd.Flags()
	if fs.Changed("approved") {
		req.Approved = &f.approved
	}
	if fs.Changed("flagged") {
		req.Flagged = &f.flagged
	}
	if fs.Changed("blacklisted") {
		req.Blacklisted = &f.blacklisted
	}
	return &req
}

func newQCCmd(open opener) *cobra.Command {
	flags := &qcFlags{}

	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Query scan QC status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			records, err := a.svc.QC.GetScanQC(cmd.Context(), flags.request(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), records)
		},
	}
	flags.bind(cmd)
	return cmd
}

// ────── export ──────

func newExportCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export metric values or QC status to xlsx",
	}
	cmd.AddCommand(newExportMetricsCmd(open), newExportQCCmd(open))
	return cmd
}

func newExportMetricsCmd(open opener) *cobra.Command {
	var (
		raw    []string
		byName bool
		output string
	)

	cmd := &cobra.Command{
		Use:     "metrics",
		Short:   "Export metric values matching key=value filters",
		Example: "  qcctl export metrics --filter studies=SPN01 --filter metrictypes=fd_mean --by-name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseFilters(raw)
			if err != nil {
				return err
			}
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			buf, filename, err := a.svc.Export.ExportMetricValues(cmd.Context(), values, byName)
			if err != nil {
				return err
			}
			return writeExport(cmd, output, filename, buf.Bytes())
		},
	}
	cmd.Flags().StringArrayVar(&raw, "filter", nil, "key=value filter, repeatable")
	cmd.Flags().BoolVar(&byName, "by-name", false, "match filter values by name instead of id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default generated name)")
	return cmd
}

func newExportQCCmd(open opener) *cobra.Command {
	flags := &qcFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Export scan QC status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			buf, filename, err := a.svc.Export.ExportQC(cmd.Context(), flags.request(cmd))
			if err != nil {
				return err
			}
			return writeExport(cmd, output, filename, buf.Bytes())
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default generated name)")
	return cmd
}

// parseFilters 解析 key=value，同名 key 累加为多值
func parseFilters(raw []string) (filter.Values, error) {
	values := filter.Values{}
	for _, kv := range raw {
		key, val, ok := strings.Cut(kv, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("无效的过滤条件 %q，应为 key=value", kv)
		}
		values[key] = append(values[key], val)
	}
	return values, nil
}

func writeExport(cmd *cobra.Command, output, filename string, data []byte) error {
	if output == "" {
		output = filename
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s\n", output)
	return nil
}

// ────── migrate ──────

func newMigrateCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()
			return database.Migrate(a.db, a.cfg.Database.Driver, a.logger)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open()
			if err != nil {
				return err
			}
			defer a.close()

			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			st, err := database.Status(sqlDB)
			if err != nil {
				return err
			}
			if st.Empty {
				fmt.Fprintln(cmd.OutOrStdout(), "尚未执行任何迁移")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", st.Version, st.Dirty)
			return nil
		},
	})
	return cmd
}
