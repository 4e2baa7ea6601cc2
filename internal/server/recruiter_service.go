package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/careerpilot/internal/cache"
	"github.com/jonathan/careerpilot/internal/config"
	"github.com/jonathan/careerpilot/internal/db"
	"github.com/jonathan/careerpilot/internal/mailer"
	"github.com/jonathan/careerpilot/internal/randutil"
	"github.com/jonathan/careerpilot/internal/types"
	"go.uber.org/zap"
)

// VerificationCodeLength is the number of digits in a signup code.
const VerificationCodeLength = 6

// RecruiterStore is the persistence surface needed for recruiter accounts.
type RecruiterStore interface {
	CreateRecruiter(ctx context.Context, r *db.Recruiter) error
	GetRecruiterByEmail(ctx context.Context, email string) (*db.Recruiter, error)
}

// pendingSignup is an unverified signup awaiting its emailed code.
type pendingSignup struct {
	Name         string
	Email        string
	PasswordHash string
	Code         string
}

// RecruiterService implements signup with email verification and login.
type RecruiterService struct {
	store     RecruiterStore
	passwords *config.PasswordConfig
	pending   *cache.TTL[string, pendingSignup]
	mailer    *mailer.Dispatcher
	logger    *zap.Logger
}

// NewRecruiterService creates a RecruiterService. Pending signups expire after codeTTL.
func NewRecruiterService(store RecruiterStore, passwords *config.PasswordConfig, dispatcher *mailer.Dispatcher, codeTTL time.Duration, logger *zap.Logger) *RecruiterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecruiterService{
		store:     store,
		passwords: passwords,
		pending:   cache.NewTTL[string, pendingSignup](codeTTL),
		mailer:    dispatcher,
		logger:    logger.Named("recruiters"),
	}
}

func toRecruiter(r *db.Recruiter) *types.Recruiter {
	if r == nil {
		return nil
	}
	return &types.Recruiter{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
}

// Signup stores a pending signup and emails its verification code. A repeated
// signup for the same email replaces the earlier code.
func (s *RecruiterService) Signup(ctx context.Context, req *types.SignupRequest) error {
	email := db.NormalizeEmail(req.Email)

	existing, err := s.store.GetRecruiterByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return &ErrEmailAlreadyExists{Email: email}
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return err
	}
	code, err := randutil.String(VerificationCodeLength, randutil.Digits)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	msg, err := mailer.ComposeVerification(email, req.Name, code, s.pending.TTL())
	if err != nil {
		return &ErrValidation{Field: "email", Message: err.Error()}
	}

	s.pending.Set(email, pendingSignup{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Code:         code,
	})

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.pending.Delete(email)
		return &ErrUpstream{Service: "mail", Err: err}
	}

	s.logger.Info("signup pending verification", zap.String("email", email))
	return nil
}

// Verify checks the code for a pending signup and creates the recruiter.
func (s *RecruiterService) Verify(ctx context.Context, req *types.VerifyRequest) (*types.Recruiter, error) {
	email := db.NormalizeEmail(req.Email)

	p, ok := s.pending.Get(email)
	if !ok {
		return nil, &ErrVerification{Reason: "no pending signup or code expired"}
	}
	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(req.Code)) != 1 {
		return nil, &ErrVerification{Reason: "invalid code"}
	}
	if _, ok := s.pending.Take(email); !ok {
		return nil, &ErrVerification{Reason: "no pending signup or code expired"}
	}

	r := &db.Recruiter{
		ID:           uuid.New(),
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
	}
	if err := s.store.CreateRecruiter(ctx, r); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, fmt.Errorf("failed to create recruiter: %w", err)
	}

	s.logger.Info("recruiter verified", zap.String("recruiter_id", r.ID.String()))
	return toRecruiter(r), nil
}

// Login checks a recruiter's email and password.
func (s *RecruiterService) Login(ctx context.Context, req *types.LoginRequest) (*types.Recruiter, error) {
	r, err := s.store.GetRecruiterByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recruiter: %w", err)
	}
	if r == nil || !s.passwords.VerifyPassword(req.Password, r.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return toRecruiter(r), nil
}

// RunSweeper removes expired pending signups until ctx is cancelled.
func (s *RecruiterService) RunSweeper(ctx context.Context) {
	s.pending.Run(ctx, time.Minute)
}
