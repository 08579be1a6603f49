package toolkit

import "segstats/ports"

var _ ports.StatsToolkit = (*Toolkit)(nil)
