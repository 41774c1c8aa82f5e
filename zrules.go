package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/bvignesz/Network-automation/audit"
	"github.com/bvignesz/Network-automation/conf"
	"github.com/bvignesz/Network-automation/dispatch"
	"github.com/bvignesz/Network-automation/repo"
	"github.com/bvignesz/Network-automation/report"
	"github.com/bvignesz/Network-automation/zia"
)

var (
	op         = flag.String("op", "", "Operation to perform - list/add-category/block-url/update-action")
	ruleName   = flag.String("rule", "", "Name of the rule to operate on (exact, case-sensitive match)")
	category   = flag.String("category", "", "URL category code to merge into the rule")
	urlToBlock = flag.String("url", "", "Domain to block (block-url operation)")
	action     = flag.String("action", "", "Target rule action - ALLOW/BLOCK/CAUTION")
	format     = flag.String("format", "table", "Report format - table/csv/json")
	dryRun     = flag.Bool("dry-run", false, "Simulate the mutation and report what would change without issuing the update")
	reports    = flag.String("reports", "reports", "Directory for csv/json report artifacts")
	auditDB    = flag.String("audit", "reports/audit.db", "Path to the local audit trail db - empty disables auditing")
	logLevel   = flag.String("loglevel", "info", "Specify the log level for output (debug/info/warn/error/fatal/panic) - default is info")
	logFile    = flag.String("logfile", "", "The log file location")
)

func printAndExit(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func setupLogging() {
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		printAndExit("%v\n", err)
	}
	logrus.SetLevel(level)
	if *logFile != "" {
		logf, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			printAndExit("%v\n", err)
		}
		logrus.SetOutput(logf)
	}
}

func main() {
	flag.Parse()
	setupLogging()
	operation, err := dispatch.Parse(&dispatch.Params{
		Op:       *op,
		RuleName: *ruleName,
		Category: *category,
		URL:      *urlToBlock,
		Action:   *action,
		Format:   *format,
	})
	if err != nil {
		printAndExit("%v\n", err)
	}
	cfg := conf.FromEnv()
	if err := cfg.PromptPassword(); err != nil {
		printAndExit("%v\n", err)
	}
	client, err := zia.New(cfg)
	if err != nil {
		printAndExit("%v\n", err)
	}
	var trail *audit.Trail
	if *auditDB != "" && dispatch.Mutates(operation) && !*dryRun {
		// Auditing is best effort - an unavailable trail never blocks the run.
		trail, err = audit.Open(*auditDB)
		if err != nil {
			logrus.WithError(err).Warn("Audit trail unavailable")
			trail = nil
		} else {
			defer trail.Close()
		}
	}
	engine := &dispatch.Engine{
		Svc:      client,
		Renderer: report.New(*reports),
		Format:   *format,
		Trail:    trail,
		DryRun:   *dryRun,
		Out:      os.Stdout,
	}
	if err := engine.Run(operation); err != nil {
		var nf *repo.RuleNotFoundError
		if errors.As(err, &nf) {
			logrus.Warn(err.Error())
			os.Exit(1)
		}
		printAndExit("%v\n", err)
	}
}
