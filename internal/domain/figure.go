package domain

// WellPlot is one well's input to the drawdown figures.
type WellPlot struct {
	File     WellFile
	Drawdown Drawdown
	// Derivative is nil when the overlay is disabled, the well is the pumped
	// well, or the fit failed.
	Derivative *Derivative
	// Line is the line group used to colour the well in the aggregate plot.
	Line string
}
