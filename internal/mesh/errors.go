package mesh

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by backends and the dispatch layer.
var (
	ErrContactNotFound   = errors.New("contact not found")
	ErrNoChannel         = errors.New("no such channel")
	ErrChannelTableFull  = errors.New("channel table full")
	ErrContactTableFull  = errors.New("contact table full")
	ErrInvalidPSK        = errors.New("invalid channel key")
	ErrSendFailed        = errors.New("send failed")
	ErrNoBroadcastMethod = errors.New("no broadcast method")
	ErrTextTooLong       = errors.New("message too long")
	ErrEmptyText         = errors.New("empty message")
)

// ChannelError ties a channel failure to the index the caller asked for.
type ChannelError struct {
	Index int
	Err   error
}

func (e ChannelError) Error() string {
	return fmt.Sprintf("channel %d: %v", e.Index, e.Err)
}

func (e ChannelError) Unwrap() error { return e.Err }
