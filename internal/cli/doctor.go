package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/amterp/cardman/internal/service"
	"github.com/amterp/ra"
)

func registerDoctor(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("doctor")
	cmd.SetDescription("Check stored cards and config for problems. Exit 0 if healthy, 1 if errors found.")

	ctx.DoctorFix, _ = ra.NewBool("fix").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Apply automatic fixes for issues with deterministic solutions").
		Register(cmd)

	ctx.DoctorDryRun, _ = ra.NewBool("dry-run").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Show what fixes would be applied without making changes").
		Register(cmd)

	ctx.DoctorUsed, _ = parent.RegisterCmd(cmd)
}

func runDoctor(app *App, fix, dryRun, jsonOutput bool) error {
	if fix && dryRun {
		return fmt.Errorf("--fix and --dry-run cannot be used together")
	}

	doctor := service.NewDoctorService(app.Storage, app.Config.StorageKey, app.ConfigStore.Path(), app.Config.Quota())

	report, err := doctor.Diagnose()
	if err != nil {
		return err
	}

	if fix && len(report.Issues) > 0 {
		report, err = doctor.Fix(report)
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		if err := printJson(app.Out, report); err != nil {
			return err
		}
	} else {
		printDoctorReport(app.Out, report, fix, dryRun)
	}

	if report.HasErrors() {
		return errUnhealthy
	}
	return nil
}

func printDoctorReport(w io.Writer, report *service.DiagnosticReport, didFix, dryRun bool) {
	st := report.Storage
	fmt.Fprintf(w, "Checking key %s...\n", RenderBold(fmt.Sprintf("%q", st.Key)))
	if st.Found {
		fmt.Fprintf(w, "  Cards: %d\n", st.Cards)
		fmt.Fprintf(w, "  Size: %d of %d bytes\n", st.Bytes, st.Quota)
	} else {
		fmt.Fprintln(w, "  Not stored yet")
	}
	fmt.Fprintln(w)

	fixedCount := 0
	if didFix {
		fixedCount = report.Summary.Fixed
	}
	if fixedCount > 0 {
		PrintSuccess(w, "Fixed %d issue(s)", fixedCount)
		fmt.Fprintln(w)
	}

	if dryRun {
		if n := countFixable(report.Issues); n > 0 {
			PrintInfo(w, "Dry run: %d issue(s) would be fixed", n)
			fmt.Fprintln(w)
		}
	}

	if len(report.Issues) == 0 {
		if fixedCount == 0 {
			PrintSuccess(w, "No issues found")
		} else {
			PrintSuccess(w, "All issues resolved")
		}
		return
	}

	// Errors first, then warnings
	for _, severity := range []service.IssueSeverity{service.SeverityError, service.SeverityWarning} {
		for _, issue := range report.Issues {
			if issue.Severity == severity {
				printIssue(w, issue)
			}
		}
	}

	fmt.Fprintln(w)
	var parts []string
	if report.Summary.Errors > 0 {
		parts = append(parts, StyleError.Render(fmt.Sprintf("%d error(s)", report.Summary.Errors)))
	}
	if report.Summary.Warnings > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d warning(s)", report.Summary.Warnings)))
	}
	if fixedCount > 0 {
		parts = append(parts, StyleSuccess.Render(fmt.Sprintf("%d fixed", fixedCount)))
	}
	if report.Summary.FixFailed > 0 {
		parts = append(parts, StyleError.Render(fmt.Sprintf("%d fix failed", report.Summary.FixFailed)))
	}
	fmt.Fprintf(w, "Summary: %s\n", strings.Join(parts, ", "))

	if !didFix && countFixable(report.Issues) > 0 {
		fmt.Fprintln(w)
		if dryRun {
			PrintInfo(w, "Run 'cardman doctor --fix' to apply these fixes")
		} else {
			PrintInfo(w, "Run 'cardman doctor --fix' to apply automatic fixes")
		}
	}
}

func countFixable(issues []service.Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

func printIssue(w io.Writer, issue service.Issue) {
	style := StyleWarning
	icon := IconWarning
	if issue.Severity == service.SeverityError {
		style = StyleError
		icon = IconError
	}

	location := ""
	if issue.CardID != 0 {
		location = " " + RenderID(issue.CardID)
	}

	fmt.Fprintf(w, "%s %s%s %s\n", style.Render(icon), style.Render("["+issue.Code+"]"), location, issue.Message)

	switch {
	case issue.FixError != "":
		fmt.Fprintf(w, "  %s Fix failed: %s\n", StyleError.Render(IconInfo), issue.FixError)
	case issue.FixAction != "" && issue.Fixable:
		fmt.Fprintf(w, "  %s Fix: %s\n", RenderMuted(IconInfo), issue.FixAction)
	case issue.FixAction != "":
		fmt.Fprintf(w, "  %s %s\n", RenderMuted(IconInfo), issue.FixAction)
	}
}
