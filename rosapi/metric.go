package rosapi

import (
	"sync/atomic"
)

// SessionMetrics contains atomic metrics for one session.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type SessionMetrics struct {
	// SentenceSentCount indicates the number of sentences sent.
	SentenceSentCount atomic.Uint64
	// SentenceRecvCount indicates the number of sentences received.
	SentenceRecvCount atomic.Uint64
	// ReplyRecvCount indicates the number of parsed replies surfaced to callers.
	ReplyRecvCount atomic.Uint64
	// TrapCount indicates the number of error-type replies received.
	TrapCount atomic.Uint64
	// LoginFailCount indicates the number of rejected login exchanges.
	LoginFailCount atomic.Uint64
}

func (m *SessionMetrics) incSentenceSentCount() {
	m.SentenceSentCount.Add(1)
}

func (m *SessionMetrics) incSentenceRecvCount() {
	m.SentenceRecvCount.Add(1)
}

func (m *SessionMetrics) incReplyRecvCount() {
	m.ReplyRecvCount.Add(1)
}

func (m *SessionMetrics) incTrapCount() {
	m.TrapCount.Add(1)
}

func (m *SessionMetrics) incLoginFailCount() {
	m.LoginFailCount.Add(1)
}
