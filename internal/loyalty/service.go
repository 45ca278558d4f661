package loyalty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/redis"
)

// JoinPoints is the signup grant for a new member.
const JoinPoints = 50

// Member is one loyalty programme entry. The roster is append-only; joining
// twice with the same email creates a second entry.
type Member struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	JoinDate string `json:"join_date"`
	Points   int    `json:"points"`
}

// JoinInput is the signup payload.
type JoinInput struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=20"`
}

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	LoyaltyKey(name string) string
}

// Service manages the loyalty roster stored in redis.
type Service interface {
	Join(ctx context.Context, input JoinInput) (*Member, error)
	List(ctx context.Context) ([]Member, error)
}

type service struct {
	store    kv
	validate *validator.Validate
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires a loyalty service over the provided key-value store.
func NewService(store kv, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("key-value store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Join(ctx context.Context, input JoinInput) (*Member, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid loyalty signup")
	}

	members, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	member := Member{
		Email:    input.Email,
		Phone:    input.Phone,
		JoinDate: s.now().UTC().Format("2006-01-02"),
		Points:   JoinPoints,
	}
	members = append(members, member)

	payload, err := json.Marshal(members)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode loyalty roster")
	}
	if err := s.store.Set(ctx, s.store.LoyaltyKey("members"), payload, 0); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store loyalty roster")
	}

	s.logg.Info(s.logg.WithField(ctx, "member_count", len(members)), "loyalty member joined")
	return &member, nil
}

func (s *service) List(ctx context.Context) ([]Member, error) {
	raw, err := s.store.Get(ctx, s.store.LoyaltyKey("members"))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Member{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read loyalty roster")
	}

	var members []Member
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode loyalty roster")
	}
	return members, nil
}
