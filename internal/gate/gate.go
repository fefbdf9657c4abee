package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rhymelab/internal/domain"
	"rhymelab/internal/infra"
)

// Admission limits and costs.
const (
	AvatarCost        = 20
	AvatarHourlyLimit = 5
	VideoHourlyLimit  = 10
	rateWindow        = time.Hour
)

// Moderator is the content safety classifier. A non-nil error is treated the
// same as a flagged result: the gate fails closed.
type Moderator interface {
	Moderate(ctx context.Context, imageBase64 string) (flagged bool, reason string, err error)
}

// AvatarRequest are the inputs checked before an avatar generation.
type AvatarRequest struct {
	UserID      string
	ChildID     string
	PhotoBase64 string
}

// VideoRequest are the inputs checked before a video admission.
type VideoRequest struct {
	UserID  string
	ChildID string
	RhymeID string
}

// Clearance bundles the entities resolved while checking, so downstream
// steps do not re-fetch them.
type Clearance struct {
	User  *domain.User
	Child *domain.Child
	Rhyme *domain.Rhyme
}

// Gate evaluates admission preconditions in fixed order, stopping at the
// first failure. All checks are read-only.
type Gate struct {
	users     domain.UserStore
	children  domain.ChildStore
	rhymes    domain.RhymeStore
	videos    domain.VideoStore
	ledger    domain.LedgerStore
	moderator Moderator
	logger    infra.Logger
	now       func() time.Time
}

// New constructs a Gate over the given collaborators.
func New(users domain.UserStore, children domain.ChildStore, rhymes domain.RhymeStore, videos domain.VideoStore, ledger domain.LedgerStore, moderator Moderator, logger infra.Logger) *Gate {
	return &Gate{
		users:     users,
		children:  children,
		rhymes:    rhymes,
		videos:    videos,
		ledger:    ledger,
		moderator: moderator,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the gate's clock. Intended for tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// CheckAvatar runs ownership, rate limit, balance and content safety checks
// for an avatar generation.
func (g *Gate) CheckAvatar(ctx context.Context, req AvatarRequest) (*Clearance, error) {
	child, err := g.ownedChild(ctx, req.ChildID, req.UserID)
	if err != nil {
		return nil, err
	}

	count, err := g.ledger.CountSince(ctx, req.UserID, domain.TransactionAvatar, g.now().Add(-rateWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent avatar generations: %w", err)
	}
	if count >= AvatarHourlyLimit {
		return nil, fmt.Errorf("%w: maximum %d avatar generations per hour", domain.ErrRateLimited, AvatarHourlyLimit)
	}

	user, err := g.affordingUser(ctx, req.UserID, AvatarCost)
	if err != nil {
		return nil, err
	}

	flagged, reason, err := g.moderator.Moderate(ctx, req.PhotoBase64)
	if err != nil {
		// Fail closed: an unreachable classifier is indistinguishable from
		// unsafe content.
		g.logger.Warn().Err(err).Str("user_id", req.UserID).Msg("moderation unavailable, rejecting")
		return nil, fmt.Errorf("%w: content moderation service unavailable", domain.ErrContentRejected)
	}
	if flagged {
		return nil, fmt.Errorf("%w: %s", domain.ErrContentRejected, reason)
	}

	return &Clearance{User: user, Child: child}, nil
}

// CheckVideo runs ownership, catalog, rate limit and balance checks for a
// video admission.
func (g *Gate) CheckVideo(ctx context.Context, req VideoRequest) (*Clearance, error) {
	child, err := g.ownedChild(ctx, req.ChildID, req.UserID)
	if err != nil {
		return nil, err
	}

	rhyme, err := g.rhymes.GetActive(ctx, req.RhymeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: rhyme not found or inactive", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load rhyme: %w", err)
	}

	count, err := g.videos.CountForUserSince(ctx, req.UserID, g.now().Add(-rateWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent videos: %w", err)
	}
	if count >= VideoHourlyLimit {
		return nil, fmt.Errorf("%w: maximum %d videos per hour", domain.ErrRateLimited, VideoHourlyLimit)
	}

	user, err := g.affordingUser(ctx, req.UserID, rhyme.GemCost)
	if err != nil {
		return nil, err
	}

	return &Clearance{User: user, Child: child, Rhyme: rhyme}, nil
}

func (g *Gate) ownedChild(ctx context.Context, childID, userID string) (*domain.Child, error) {
	child, err := g.children.GetOwned(ctx, childID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: child not found or access denied", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load child: %w", err)
	}
	return child, nil
}

func (g *Gate) affordingUser(ctx context.Context, userID string, cost int) (*domain.User, error) {
	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.CanAfford(cost) {
		return nil, fmt.Errorf("%w: this generation costs %d gems", domain.ErrInsufficientGems, cost)
	}
	return user, nil
}
