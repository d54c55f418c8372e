package main

import (
	"github.com/spf13/cobra"

	"github.com/isseis/go-elf-checksec/internal/report"
	"github.com/isseis/go-elf-checksec/internal/security/elfanalyzer"
)

func infoCommand(global *globalParams) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print the ELF header, program headers and section headers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global, cmd.Flags(), nil)
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			maxSize, err := cfg.MaxFileSizeBytes()
			if err != nil {
				return err
			}

			path := args[0]
			analyzer := elfanalyzer.NewStandardELFAnalyzer(nil, elfanalyzer.Config{MaxFileSize: maxSize})
			insp, err := analyzer.Inspect(path)
			if err != nil {
				return err
			}
			return renderer.WriteInfo(cmd.OutOrStdout(), report.NewInfoReport(path, insp))
		},
	}
}
