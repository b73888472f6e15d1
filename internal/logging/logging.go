// Package logging wraps logrus behind the teacher's verbosity-level
// convention (0=None, 1=Standard, 2=Progress, 3=Data, 4=FullData),
// instead of a hand-rolled printMessage gate.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Verbosity mirrors deployer_src's globalVerbosityLevel scale.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
)

// New builds a logrus.Logger whose level corresponds to the supplied
// verbosity, mirroring the teacher's own scale: "0 - None: quiet
// (prints nothing but errors)". VerbosityNone therefore still surfaces
// Error/Fatal lines; it is not a full io.Discard.
func New(v Verbosity) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: v >= VerbosityProgress})

	switch {
	case v <= VerbosityNone:
		log.SetLevel(logrus.ErrorLevel)
	case v == VerbosityStandard:
		log.SetLevel(logrus.InfoLevel)
	case v == VerbosityProgress:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.TraceLevel)
	}
	return log
}

// DeployFields returns the deploy_id/package field set the request
// handler attaches to its per-deploy log lines.
func DeployFields(deployID, pkg string) logrus.Fields {
	return logrus.Fields{"deploy_id": deployID, "package": pkg}
}
