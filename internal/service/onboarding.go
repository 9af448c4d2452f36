package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/smashpoint/league/internal/auth"
	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/guard"
	"github.com/smashpoint/league/internal/ledger"
	"github.com/smashpoint/league/internal/provider"
)

const (
	// TACExpiry is how long a requested code stays redeemable.
	TACExpiry = 5 * time.Minute

	notifyTimeout = 10 * time.Second
	minCodeDigits = 4
)

var (
	errNoTACRequest   = domain.ErrValidation("no valid TAC request found, please request a new TAC")
	errInvalidTACCode = domain.ErrValidation("invalid TAC code")
)

// OnboardingService registers players through a WhatsApp-delivered TAC and issues sessions.
type OnboardingService struct {
	gate       *ledger.Gate
	notifier   provider.TACNotifier
	jwtMgr     *auth.JWTManager
	limiter    *guard.RateLimiter
	lockout    *guard.Lockout
	events     EventPublisher
	exposeCode bool
	logger     *slog.Logger
	now        func() time.Time
	newCode    func() (string, error)
}

// OnboardingConfig groups the collaborators of an OnboardingService.
type OnboardingConfig struct {
	Gate       *ledger.Gate
	Notifier   provider.TACNotifier
	JWT        *auth.JWTManager
	Limiter    *guard.RateLimiter // per WhatsApp number, on TAC requests
	Lockout    *guard.Lockout     // per WhatsApp number, on failed verifications
	Events     EventPublisher
	ExposeCode bool
	Logger     *slog.Logger
}

// NewOnboardingService creates an OnboardingService.
func NewOnboardingService(cfg OnboardingConfig) *OnboardingService {
	return &OnboardingService{
		gate:       cfg.Gate,
		notifier:   cfg.Notifier,
		jwtMgr:     cfg.JWT,
		limiter:    cfg.Limiter,
		lockout:    cfg.Lockout,
		events:     cfg.Events,
		exposeCode: cfg.ExposeCode,
		logger:     cfg.Logger,
		now:        time.Now,
		newCode:    provider.NewTACCode,
	}
}

// TACRequestInput starts onboarding.
type TACRequestInput struct {
	DisplayName string `json:"display_name"`
	NTRP        string `json:"ntrp"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	AcceptTAC   bool   `json:"accept_tac"`
}

// TACRequestResult reports the stored request and how delivery went.
type TACRequestResult struct {
	OK               bool                  `json:"ok"`
	Message          string                `json:"message"`
	ExpiresInSeconds int                   `json:"expires_in_seconds"`
	Provider         domain.DeliveryReport `json:"provider"`
	RequestID        string                `json:"request_id"`
	DevTACCode       string                `json:"dev_tac_code,omitempty"`
}

// VerifyInput redeems a TAC.
type VerifyInput struct {
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Code        string `json:"code"`
}

// LoginInput identifies a registered player by phone.
type LoginInput struct {
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// SessionResult is returned by verification and phone login.
type SessionResult struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message,omitempty"`
	Session domain.Session  `json:"session"`
	Player  domain.Player   `json:"player"`
	Account *domain.Account `json:"account,omitempty"`
}

// RequestTAC stores a new verification request and then sends the code. The request is
// persisted before delivery is attempted, and a failed delivery does not remove it.
func (s *OnboardingService) RequestTAC(ctx context.Context, in TACRequestInput) (*TACRequestResult, error) {
	name := strings.TrimSpace(in.DisplayName)
	ntrp := strings.TrimSpace(in.NTRP)
	countryCode := countryCodeOrDefault(in.CountryCode)
	phone := domain.Digits(in.Phone)

	if name == "" {
		return nil, domain.ErrValidation("display name is required")
	}
	if ntrp == "" {
		return nil, domain.ErrValidation("NTRP level is required")
	}
	if err := domain.ValidatePhone(phone); err != nil {
		return nil, err
	}
	if !in.AcceptTAC {
		return nil, domain.ErrValidation("you must accept Terms and Conditions")
	}

	number := domain.WhatsAppNumber(countryCode, phone)
	if s.limiter != nil {
		if res := s.limiter.Check(ctx, number); !res.Allowed {
			s.logger.Warn("tac request rate limited", "whatsapp_number", number, "reason", res.Reason)
			return nil, domain.ErrTooManyRequests("too many TAC requests, try again later")
		}
	}

	code, err := s.newCode()
	if err != nil {
		return nil, domain.ErrInternal("generate TAC", err)
	}

	now := s.now().UTC()
	req := domain.TACRequest{
		ID:             domain.NewID(domain.PrefixTAC),
		DisplayName:    name,
		NTRP:           ntrp,
		CountryCode:    countryCode,
		Phone:          phone,
		WhatsAppNumber: number,
		Code:           code,
		AcceptTAC:      true,
		CreatedAt:      now,
		ExpiresAt:      now.Add(TACExpiry).Truncate(time.Second),
	}
	if err := s.gate.Mutate(ctx, func(doc *domain.Document) error {
		doc.TACRequests = append(doc.TACRequests, req)
		return nil
	}); err != nil {
		return nil, err
	}

	// delivery happens outside the gate and is bounded
	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	report := s.notifier.Send(nctx, number, code)

	s.logger.Info("tac requested",
		"request_id", req.ID,
		"whatsapp_number", number,
		"provider", report.Provider,
		"delivered", report.Delivered,
	)

	result := &TACRequestResult{
		OK:               true,
		Message:          "TAC sent to WhatsApp.",
		ExpiresInSeconds: int(TACExpiry / time.Second),
		Provider:         report,
		RequestID:        req.ID,
	}
	if s.exposeCode {
		result.DevTACCode = code
	}
	return result, nil
}

// VerifyTAC redeems the latest unexpired request for the phone, creating or reactivating
// the player and its account, and issues a session.
func (s *OnboardingService) VerifyTAC(ctx context.Context, in VerifyInput) (*SessionResult, error) {
	countryCode := countryCodeOrDefault(in.CountryCode)
	phone := domain.Digits(in.Phone)
	code := domain.Digits(in.Code)

	if len(phone) < 7 {
		return nil, domain.ErrValidation("phone is required")
	}
	if len(code) < minCodeDigits {
		return nil, domain.ErrValidation("TAC code is required")
	}

	number := domain.WhatsAppNumber(countryCode, phone)
	if s.lockout != nil {
		if err := s.lockout.CheckLocked(number); err != nil {
			return nil, err
		}
	}

	type verified struct {
		player  domain.Player
		account domain.Account
		event   domain.Event
	}
	now := s.now().UTC()
	out, err := ledger.WithMutation(ctx, s.gate, func(doc *domain.Document) (verified, error) {
		target := latestUsableRequest(doc, countryCode, phone, now)
		if target == nil {
			return verified{}, errNoTACRequest
		}
		if target.Code != code {
			return verified{}, errInvalidTACCode
		}
		target.Verified = true
		target.VerifiedAt = &now

		p := upsertVerifiedPlayer(doc, *target, now)
		acc := syncAccount(doc, p, now, false)
		evt := domain.NewEvent(domain.AggregatePlayer, p.ID, domain.EventPlayerVerified, p)
		return verified{player: p, account: acc, event: stamp(evt, doc.Revision)}, nil
	})
	if err != nil {
		if s.lockout != nil && errors.Is(err, errInvalidTACCode) {
			s.lockout.RecordFailure(number)
		}
		return nil, err
	}
	if s.lockout != nil {
		s.lockout.Reset(number)
	}

	session, err := s.session(out.player)
	if err != nil {
		return nil, err
	}

	s.logger.Info("player verified", "player_id", out.player.ID, "whatsapp_number", number)
	if s.events != nil {
		s.events.Publish(ctx, out.event)
	}

	acc := out.account
	return &SessionResult{
		OK:      true,
		Message: "Registration complete.",
		Session: session,
		Player:  out.player,
		Account: &acc,
	}, nil
}

// LoginByPhone issues a session for an already registered phone number.
func (s *OnboardingService) LoginByPhone(ctx context.Context, in LoginInput) (*SessionResult, error) {
	countryCode := countryCodeOrDefault(in.CountryCode)
	phone := domain.Digits(in.Phone)
	if err := domain.ValidatePhone(phone); err != nil {
		return nil, err
	}

	doc, err := s.gate.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := findByPhone(doc, countryCode, phone)
	if p == nil {
		return nil, &domain.AppError{
			Code:    domain.CodeNotFound,
			Message: "player not found, please register first",
			Status:  404,
		}
	}

	session, err := s.session(*p)
	if err != nil {
		return nil, err
	}
	return &SessionResult{OK: true, Session: session, Player: *p}, nil
}

func (s *OnboardingService) session(p domain.Player) (domain.Session, error) {
	token, err := s.jwtMgr.GeneratePlayerToken(p.ID, p.WhatsAppNumber)
	if err != nil {
		return domain.Session{}, domain.ErrInternal("generate token", err)
	}
	return domain.Session{
		Token:          token,
		PlayerID:       p.ID,
		PlayerName:     p.DisplayName,
		WhatsAppNumber: p.WhatsAppNumber,
	}, nil
}

// latestUsableRequest scans newest first for an unverified, unexpired request.
func latestUsableRequest(doc *domain.Document, countryCode, phone string, now time.Time) *domain.TACRequest {
	for i := len(doc.TACRequests) - 1; i >= 0; i-- {
		r := &doc.TACRequests[i]
		if r.CountryCode == countryCode && r.Phone == phone && r.Usable(now) {
			return r
		}
	}
	return nil
}

// upsertVerifiedPlayer creates the player for a redeemed request, or reactivates and
// refreshes the one already holding that WhatsApp number.
func upsertVerifiedPlayer(doc *domain.Document, req domain.TACRequest, now time.Time) domain.Player {
	for i := range doc.Players {
		p := &doc.Players[i]
		if p.WhatsAppNumber != req.WhatsAppNumber {
			continue
		}
		p.TACVerified = true
		p.Active = true
		p.DisplayName = firstNonEmpty(req.DisplayName, p.DisplayName)
		p.NTRP = firstNonEmpty(req.NTRP, p.NTRP)
		p.Group = domain.GroupForNTRP(p.NTRP)
		p.UpdatedAt = &now
		return *p
	}

	p := domain.Player{
		ID:                    domain.NewID(domain.PrefixPlayer),
		DisplayName:           req.DisplayName,
		NTRP:                  req.NTRP,
		Group:                 domain.GroupForNTRP(req.NTRP),
		Phone:                 req.Phone,
		CountryCode:           req.CountryCode,
		WhatsAppNumber:        req.WhatsAppNumber,
		RegisteredViaWhatsApp: true,
		TACVerified:           true,
		Active:                true,
		CreatedAt:             now,
	}
	doc.Players = append(doc.Players, p)
	return p
}
