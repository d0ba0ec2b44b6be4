package practice

import "github.com/phrazzld/mastery-api/internal/domain"

// Session is a started or resumed practice session. The two implementations
// are kept apart because their answers update different state: spaced
// repetition sessions drive the SM-2 records, legacy sessions drive the
// binary mastered flags.
type Session interface {
	// Mode identifies the session kind.
	Mode() domain.PracticeMode
	// State returns the tracked progress of the session.
	State() domain.SessionProgress
	// Resumed reports whether the session was restored from saved progress.
	Resumed() bool
}

// SpacedRepetitionSession is a session composed from SM-2 memory state.
type SpacedRepetitionSession struct {
	Progress    domain.SessionProgress
	NewCount    int
	ReviewCount int
	WasResumed  bool
}

// Mode implements Session.
func (s *SpacedRepetitionSession) Mode() domain.PracticeMode { return domain.PracticeModeSpaced }

// State implements Session.
func (s *SpacedRepetitionSession) State() domain.SessionProgress { return s.Progress }

// Resumed implements Session.
func (s *SpacedRepetitionSession) Resumed() bool { return s.WasResumed }

// LegacySession is a session composed from the mistake ledger and the
// mastered flags.
type LegacySession struct {
	Progress   domain.SessionProgress
	WasResumed bool
}

// Mode implements Session.
func (s *LegacySession) Mode() domain.PracticeMode { return domain.PracticeModeLegacy }

// State implements Session.
func (s *LegacySession) State() domain.SessionProgress { return s.Progress }

// Resumed implements Session.
func (s *LegacySession) Resumed() bool { return s.WasResumed }

// sessionFromProgress restores the session variant recorded in p.
func sessionFromProgress(p domain.SessionProgress, resumed bool) Session {
	if p.Mode == domain.PracticeModeLegacy {
		return &LegacySession{Progress: p, WasResumed: resumed}
	}

	s := &SpacedRepetitionSession{Progress: p, WasResumed: resumed}
	for _, item := range p.Items {
		if item.IsNew {
			s.NewCount++
		} else {
			s.ReviewCount++
		}
	}
	return s
}
