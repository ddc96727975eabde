package extract

// ProgressReporter receives run lifecycle events. Implementations must be
// safe for concurrent OnFileAnalyzed calls.
type ProgressReporter interface {
	OnDiscoveryStart()
	OnDiscoveryComplete(sourceFiles, templateFiles int)
	OnAnalysisStart(totalFiles int)
	OnFileAnalyzed(path string)
	OnAnalysisComplete(summary *RunSummary)
}

// NoopReporter discards all events.
type NoopReporter struct{}

func (NoopReporter) OnDiscoveryStart()                {}
func (NoopReporter) OnDiscoveryComplete(_, _ int)     {}
func (NoopReporter) OnAnalysisStart(_ int)            {}
func (NoopReporter) OnFileAnalyzed(_ string)          {}
func (NoopReporter) OnAnalysisComplete(_ *RunSummary) {}
