package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akozyrev/profvibe/internal/observability"
	"github.com/akozyrev/profvibe/internal/profile"
)

var (
	ErrAlreadyCompleted = errors.New("session already completed")
	ErrNotCompleted     = errors.New("session not completed")
)

// alternativesPrompt is shown when the user's message did not name a real
// profession and we offer adjacent ones instead.
const alternativesPrompt = "Unfortunately, there is no such profession. Maybe you meant one of these?"

// Turn is the outcome of one dialogue step: either the next question to ask,
// a set of profession alternatives to choose from, or the finished profile.
type Turn struct {
	Session      *Session
	Question     string
	Alternatives []string
	Done         bool
}

// Machine drives sessions through the clarification stages. Every transition
// runs generation first and commits the new state with a single Save, so a
// failed generation leaves the stored session untouched.
type Machine struct {
	store              Store
	synth              *profile.Synthesizer
	hub                *ProgressHub
	metrics            *observability.Metrics
	maxDetailQuestions int
}

func NewMachine(store Store, synth *profile.Synthesizer, hub *ProgressHub, metrics *observability.Metrics, maxDetailQuestions int) *Machine {
	if maxDetailQuestions <= 0 {
		maxDetailQuestions = 3
	}
	return &Machine{
		store:              store,
		synth:              synth,
		hub:                hub,
		metrics:            metrics,
		maxDetailQuestions: maxDetailQuestions,
	}
}

// Start validates the profession named in the opening message and creates the
// session. A real profession lands in the details stage with its first
// question already on the history; an unreal one lands in the alternatives
// stage.
func (m *Machine) Start(ctx context.Context, userMessage, userID string) (*Turn, error) {
	check, err := m.synth.CheckProfession(ctx, userMessage)
	if err != nil {
		return nil, fmt.Errorf("check profession: %w", err)
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Status:         StatusWaitingAnswer,
		InitialMessage: userMessage,
		History:        []profile.QA{},
		Revision:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if !check.IsReal {
		sess.Stage = StageAlternatives
		sess.Alternatives = check.Alternatives
		if err := m.store.Create(ctx, sess); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		m.metrics.SessionsStarted.Inc()
		m.metrics.StageTransitions.WithLabelValues(string(StageProfessionCheck), string(StageAlternatives)).Inc()
		return &Turn{Session: sess, Question: alternativesPrompt, Alternatives: sess.Alternatives}, nil
	}

	question, err := m.synth.NextDetailQuestion(ctx, check.ProfessionName, 1, userMessage, nil)
	if err != nil {
		return nil, fmt.Errorf("first detail question: %w", err)
	}
	sess.Stage = StageDetails
	sess.IdentifiedProfession = check.ProfessionName
	sess.History = append(sess.History, profile.QA{Question: question})
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.metrics.SessionsStarted.Inc()
	m.metrics.StageTransitions.WithLabelValues(string(StageProfessionCheck), string(StageDetails)).Inc()
	return &Turn{Session: sess, Question: question}, nil
}

// Answer applies the user's reply to the session's current stage. All
// generation happens before the single Save, and the Save is revision-checked,
// so concurrent answers to one session race on the commit rather than on the
// state.
func (m *Machine) Answer(ctx context.Context, sessionID, answer string) (*Turn, error) {
	stored, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	sess := stored.Clone()
	switch sess.Stage {
	case StageAlternatives:
		return m.answerAlternatives(ctx, sess, answer)
	case StageDetails:
		return m.answerDetails(ctx, sess, answer)
	case StageVibe:
		return m.answerVibe(ctx, sess, answer)
	default:
		return nil, fmt.Errorf("session %s in unexpected stage %q", sess.ID, sess.Stage)
	}
}

func (m *Machine) answerAlternatives(ctx context.Context, sess *Session, answer string) (*Turn, error) {
	profession := strings.TrimSpace(answer)
	initialContext := fmt.Sprintf("%s (chosen profession: %s)", sess.InitialMessage, profession)
	question, err := m.synth.NextDetailQuestion(ctx, profession, 1, initialContext, nil)
	if err != nil {
		return nil, fmt.Errorf("first detail question: %w", err)
	}

	sess.IdentifiedProfession = profession
	sess.Stage = StageDetails
	sess.Alternatives = nil
	sess.History = append(sess.History, profile.QA{Question: question})
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	m.metrics.StageTransitions.WithLabelValues(string(StageAlternatives), string(StageDetails)).Inc()
	return &Turn{Session: sess, Question: question}, nil
}

func (m *Machine) answerDetails(ctx context.Context, sess *Session, answer string) (*Turn, error) {
	if len(sess.History) == 0 {
		return nil, fmt.Errorf("session %s has no open question", sess.ID)
	}
	sess.History[len(sess.History)-1].Answer = answer

	if len(sess.History) < m.maxDetailQuestions {
		question, err := m.synth.NextDetailQuestion(ctx, sess.IdentifiedProfession, len(sess.History)+1, sess.InitialMessage, sess.History)
		if err != nil {
			return nil, fmt.Errorf("detail question: %w", err)
		}
		sess.History = append(sess.History, profile.QA{Question: question})
		if err := m.store.Save(ctx, sess); err != nil {
			return nil, err
		}
		return &Turn{Session: sess, Question: question}, nil
	}

	question, err := m.synth.VibeQuestion(ctx, condensedContext(sess))
	if err != nil {
		return nil, fmt.Errorf("vibe question: %w", err)
	}
	sess.Stage = StageVibe
	sess.History = append(sess.History, profile.QA{Question: question})
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	m.metrics.StageTransitions.WithLabelValues(string(StageDetails), string(StageVibe)).Inc()
	return &Turn{Session: sess, Question: question}, nil
}

func (m *Machine) answerVibe(ctx context.Context, sess *Session, answer string) (*Turn, error) {
	if len(sess.History) == 0 {
		return nil, fmt.Errorf("session %s has no open question", sess.ID)
	}
	sess.History[len(sess.History)-1].Answer = answer

	// The vibe exchange colors the tone of the profile but is not one of the
	// factual detail answers, so it is excluded from the history passed in.
	details := sess.History[:len(sess.History)-1]
	result, err := m.synth.SynthesizeProfile(ctx, sess.IdentifiedProfession, details, answer, func(text string) {
		m.hub.Publish(sess.ID, text)
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize profile: %w", err)
	}

	sess.Result = &result
	sess.Stage = StageCompleted
	sess.Status = StatusCompleted
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	m.metrics.StageTransitions.WithLabelValues(string(StageVibe), string(StageCompleted)).Inc()
	m.metrics.ProfilesCompleted.Inc()
	return &Turn{Session: sess, Done: true}, nil
}

// Session returns the stored state, for callers that only need to know the
// session exists (the progress stream checks before upgrading).
func (m *Machine) Session(ctx context.Context, sessionID string) (*Session, error) {
	return m.store.Get(ctx, sessionID)
}

// Result returns the finished profile, or ErrNotCompleted while the dialogue
// is still in flight.
func (m *Machine) Result(ctx context.Context, sessionID string) (*Session, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	return sess, nil
}

func condensedContext(sess *Session) string {
	answers := make([]string, 0, len(sess.History))
	for _, qa := range sess.History {
		if strings.TrimSpace(qa.Answer) != "" {
			answers = append(answers, qa.Answer)
		}
	}
	return fmt.Sprintf("%s. %s", sess.IdentifiedProfession, strings.Join(answers, "; "))
}
