package ui

import "sync/atomic"

type Stats struct {
	Characters atomic.Int64
	Coatings   atomic.Int64
	Failed     atomic.Int64
}
