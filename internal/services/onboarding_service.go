package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"boundless-travel/internal/clients"
	"boundless-travel/internal/interfaces"
	"boundless-travel/internal/state"
)

// Wizard steps
const (
	StepConnectWallet  = 1
	StepConnectSocials = 2
	StepInviteCode     = 3
)

// InvalidInviteCodeMessage user-facing text for a rejected code
const InvalidInviteCodeMessage = "Invalid invite code"

// ErrWalletNotConnected the operation needs a connected wallet
var ErrWalletNotConnected = errors.New("wallet not connected")

// WizardStep static description of one step
type WizardStep struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasPrevious bool   `json:"hasPrevious"`
	HasNext     bool   `json:"hasNext"`
}

var wizardSteps = []WizardStep{
	{Index: StepConnectWallet, ID: "connectWallet", Name: "Connect Wallet", HasPrevious: false, HasNext: true},
	{Index: StepConnectSocials, ID: "connectSocial", Name: "Connect Socials", HasPrevious: true, HasNext: true},
	{Index: StepInviteCode, ID: "inviteCode", Name: "Enter Invite Code", HasPrevious: false, HasNext: false},
}

// OnboardingView wizard model rendered by the presentation layer
type OnboardingView struct {
	Steps       []WizardStep `json:"steps"`
	CurrentStep int          `json:"currentStep"`
	Completed   bool         `json:"completed"`
	Connected   bool         `json:"connected"`
	Message     string       `json:"message,omitempty"`
}

// OnboardingService welcome wizard shown before the campaign page
type OnboardingService struct {
	backend interfaces.TravelBackend
}

// NewOnboardingService creates the wizard service
func NewOnboardingService(backend interfaces.TravelBackend) *OnboardingService {
	return &OnboardingService{backend: backend}
}

// EnsureTravelInfo loads travel info and settings into the session when missing
func (s *OnboardingService) EnsureTravelInfo(ctx context.Context, sess *state.Session) (state.AppState, error) {
	st := sess.Snapshot()
	if st.TravelInfo != nil || st.Account == "" {
		return st, nil
	}

	info, err := s.backend.LoginOrCreate(ctx, st.Account)
	if err != nil {
		return st, fmt.Errorf("load travel info: %w", err)
	}
	st = sess.SetTravelInfo(info)

	settings, err := s.backend.GetTravelSettings(ctx)
	if err != nil {
		// the wizard works without campaign settings
		log.Printf("⚠️ Failed to load travel settings: %v", err)
		return st, nil
	}
	return sess.SetSettings(settings), nil
}

// View current wizard state
func (s *OnboardingService) View(sess *state.Session) OnboardingView {
	return viewOf(sess.Snapshot(), "")
}

// Next advances the wizard. From step 1 a connected, already invited wallet completes directly.
func (s *OnboardingService) Next(sess *state.Session) (OnboardingView, error) {
	st := sess.Snapshot()
	if st.IsWelcomeViewed {
		return viewOf(st, ""), nil
	}

	step := wizardStep(st.OnboardingStep)
	if !step.HasNext {
		return viewOf(st, ""), fmt.Errorf("step %d has no next step", step.Index)
	}

	if step.Index == StepConnectWallet {
		if !st.Connected {
			return viewOf(st, ""), ErrWalletNotConnected
		}
		if st.TravelInfo.IsInvited() {
			return viewOf(sess.MarkWelcomeViewed(), ""), nil
		}
	}
	return viewOf(sess.SetOnboardingStep(step.Index+1), ""), nil
}

// Previous moves one step back where the step allows it
func (s *OnboardingService) Previous(sess *state.Session) (OnboardingView, error) {
	st := sess.Snapshot()
	step := wizardStep(st.OnboardingStep)
	if st.IsWelcomeViewed || !step.HasPrevious {
		return viewOf(st, ""), fmt.Errorf("step %d has no previous step", step.Index)
	}
	return viewOf(sess.SetOnboardingStep(step.Index-1), ""), nil
}

// SubmitInviteCode completes the wizard. An empty code skips the referral;
// a rejected code keeps the wizard on the current step.
func (s *OnboardingService) SubmitInviteCode(ctx context.Context, sess *state.Session, code string) (OnboardingView, error) {
	st := sess.Snapshot()
	code = strings.TrimSpace(code)
	if code == "" {
		return viewOf(sess.MarkWelcomeViewed(), ""), nil
	}
	if !st.Connected || st.Account == "" {
		return viewOf(st, ""), ErrWalletNotConnected
	}

	if err := s.backend.CheckInviteCode(ctx, st.Account, code); err != nil {
		if errors.Is(err, clients.ErrInvalidInviteCode) {
			return viewOf(st, InvalidInviteCodeMessage), err
		}
		return viewOf(st, ""), err
	}

	// the referral changes the invite relationship, refresh the cached record
	if info, err := s.backend.LoginOrCreate(ctx, st.Account); err == nil {
		sess.SetTravelInfo(info)
	} else {
		log.Printf("⚠️ Failed to refresh travel info of %s: %v", st.Account, err)
	}
	return viewOf(sess.MarkWelcomeViewed(), ""), nil
}

func wizardStep(index int) WizardStep {
	if index < StepConnectWallet || index > len(wizardSteps) {
		return wizardSteps[0]
	}
	return wizardSteps[index-1]
}

func viewOf(st state.AppState, message string) OnboardingView {
	return OnboardingView{
		Steps:       wizardSteps,
		CurrentStep: wizardStep(st.OnboardingStep).Index,
		Completed:   st.IsWelcomeViewed,
		Connected:   st.Connected,
		Message:     message,
	}
}
