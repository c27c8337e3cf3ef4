package commands

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scriptls/scriptls/pkg/analyzer/scan"
	"github.com/scriptls/scriptls/pkg/lsp"
	"github.com/scriptls/scriptls/pkg/sources"
)

// CheckCmd represents the check command
func BuildCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files or projects]",
		Short: "Check scripts or projects and report diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				args = sources.SearchDirs(wd)
			}
			dispatcher := lsp.NewDispatcher(scan.New())
			ctx := cmd.Context()

			var projects []string
			for _, arg := range args {
				if strings.HasSuffix(arg, sources.ProjectExtension) {
					projects = append(projects, arg)
				}
			}
			if len(projects) > 0 {
				if err := dispatcher.Workspace().Load(ctx, projects); err != nil {
					return err
				}
			}

			failed := false
			for _, arg := range args {
				out, err := dispatcher.Compile(ctx, arg)
				if err != nil {
					return err
				}
				for _, d := range out.Errors {
					cmd.Printf("%s:%d:%d: %s: %s\n", d.File, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Code, d.Message)
				}
				if out.ExitCode != 0 {
					failed = true
				}
			}
			if failed {
				return errors.New("one or more errors occurred")
			}
			return nil
		},
	}
	return cmd
}
