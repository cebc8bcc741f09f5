package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/catnav/internal/telemetry"
	"github.com/danielpatrickdp/catnav/internal/validation"
)

// #region validate
var (
	validateOutputDir string
	validateSkip      []string
	validateParallel  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the validator suite and write JSON reports",
	Long: `Runs the partition, kuramoto, consciousness, ternary and completion
validators. Each writes <output-dir>/<name>/<name>_results.json and the suite
writes <output-dir>/complete_validation_results.json.

Examples:
  catnav validate
  catnav validate --skip kuramoto --output-dir /tmp/results
  catnav validate --parallel`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutputDir, "output-dir", "o", "", "directory for result files (default from config)")
	validateCmd.Flags().StringSliceVar(&validateSkip, "skip", nil, "validators to skip, comma separated")
	validateCmd.Flags().BoolVar(&validateParallel, "parallel", false, "run validators concurrently")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	vcfg := cfg.Validation
	if validateOutputDir != "" {
		vcfg.OutputDir = validateOutputDir
	}
	for _, name := range validateSkip {
		if _, err := validation.ParseKind(name); err != nil {
			return err
		}
	}
	vcfg.Skip = append(vcfg.Skip, validateSkip...)
	if validateParallel {
		vcfg.Parallel = true
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	suite := validation.NewSuite(vcfg, validation.WithLogger(logger), validation.WithMetrics(metrics))
	report, err := suite.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := validation.Save(vcfg.OutputDir, report); err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", styles.Muted.Render("results:"), vcfg.OutputDir)
	return nil
}

// #endregion validate

// #region report
func printReport(w io.Writer, r validation.Report) {
	fmt.Fprintln(w, styles.Title.Render("VALIDATION REPORT"))

	names := make([]string, 0, len(r.Results))
	for name := range r.Results {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		o := r.Results[name]
		if o.Err != "" {
			fmt.Fprintf(w, "\n%s  %s\n", styles.Header.Render(strings.ToUpper(name)), styles.Error.Render("ERROR: "+o.Err))
			continue
		}
		fmt.Fprintf(w, "\n%s  %d/%d\n", styles.Header.Render(strings.ToUpper(name)), o.Result.Passed(), o.Result.Total())

		claims := make([]string, 0, len(o.Result.ClaimsValidated))
		for c := range o.Result.ClaimsValidated {
			claims = append(claims, c)
		}
		slices.Sort(claims)
		for _, c := range claims {
			fmt.Fprintf(w, "  %-34s %s\n", c, passFail(o.Result.ClaimsValidated[c]))
		}
	}

	validated, total := r.Claims()
	status := r.Status()
	summary := fmt.Sprintf("validators  %d\nclaims      %d/%d (%.1f%%)\ntime        %.2fs\nstatus      %s",
		len(r.Results), validated, total, r.Rate()*100, r.Metadata.TotalTimeSeconds,
		statusStyle(status).Render(strings.ToUpper(string(status))))
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Box.Render(summary))
}

// #endregion report
