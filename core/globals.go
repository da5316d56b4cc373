package core

import (
	"github.com/trackademic/trackademic/internal/contract"
	"github.com/trackademic/trackademic/internal/outwriter"
)

var (
	// warnFunc and infoFunc are swapped out in tests
	warnFunc = contract.LogWarn
	infoFunc = contract.LogInfo

	// out prints results in the configured format
	out = outwriter.NewOutWriter()
)
