// cmd/tools/matchctl/rank.go
package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/matching"
	"renovation-matching/internal/models"
	"renovation-matching/internal/repository"
)

type rankOutput struct {
	ProjectID string `json:"projectId"`
	Source    string `json:"source"`
	*matching.Result
}

func newRankCommand() *cobra.Command {
	var (
		projectPath   string
		companiesPath string
		limit         int
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a roster against a project file",
		Long: `Rank scores a roster of companies against a project read from a JSON or
YAML file and prints the ranked list as JSON. Without --companies the
built-in demonstration roster is used. Workload caps are not applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := loadRankRequest(projectPath)
			if err != nil {
				return err
			}

			source := "demo"
			companies := repository.DemoCompanies()
			if companiesPath != "" {
				if companies, err = loadCompanies(companiesPath); err != nil {
					return err
				}
				source = companiesPath
			}

			log := logger.NewNoOpLogger()
			if verbose {
				log = logger.NewZapAdapter(logger.New("debug", "console", "stderr"))
			}
			engine := matching.NewEngine(matching.Config{}, repository.NewStaticCompanyRepository(companies), nil, log)

			criteria := req.Project.Criteria()
			if req.Criteria != nil {
				criteria = *req.Criteria
			}
			res, err := engine.Rank(cmd.Context(), req.Project, criteria)
			if err != nil {
				return err
			}
			if limit > 0 && len(res.Companies) > limit {
				res.Companies = res.Companies[:limit]
			}
			if res.Companies == nil {
				res.Companies = []models.MatchedCompany{}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rankOutput{ProjectID: req.Project.ID, Source: source, Result: res})
		},
	}

	cmd.Flags().StringVarP(&projectPath, "project", "p", "", "project file (.json, .yaml)")
	cmd.Flags().StringVarP(&companiesPath, "companies", "c", "", "company roster file (defaults to the demo roster)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum companies to print (0 prints all)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log filter decisions to stderr")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
