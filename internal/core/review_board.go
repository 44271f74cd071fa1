package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tng-poetry-backend/internal/models"
)

// BoardOptions tunes a ReviewBoard.
type BoardOptions struct {
	// RefetchAfterWrite replaces the local prepend with a fresh read of the store
	// after every successful submit, so the list always follows server order.
	RefetchAfterWrite bool
	Logger            *zap.Logger
}

// SubmitResult is the outcome of ReviewBoard.Submit.
type SubmitResult struct {
	Review *models.Review
	Err    error
}

// OK reports whether the review was stored and applied locally.
func (r SubmitResult) OK() bool { return r.Err == nil }

// LikeResult is the outcome of ReviewBoard.Like.
type LikeResult struct {
	ReviewID string
	Likes    int
	Liked    bool
	Err      error
}

// OK reports whether the like was stored and applied locally.
func (r LikeResult) OK() bool { return r.Err == nil }

// ReviewBoard is the review list of one poem as seen by one viewer session.
// Local state changes only after the store confirms a command. Once closed,
// results of calls still in flight are discarded.
type ReviewBoard struct {
	poemID  string
	service ReviewService
	opts    BoardOptions
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	loaded  bool
	loads   uint64 // bumped whenever reviews is replaced from the store
	reviews []*models.Review
	liked   map[string]bool
	pending map[string]bool
}

// NewReviewBoard creates a board for poemID. Cancelling parent closes the board.
func NewReviewBoard(parent context.Context, poemID string, service ReviewService, opts BoardOptions) *ReviewBoard {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	return &ReviewBoard{
		poemID:  poemID,
		service: service,
		opts:    opts,
		logger:  logger.With(zap.String("poemId", poemID)),
		ctx:     ctx,
		cancel:  cancel,
		liked:   make(map[string]bool),
		pending: make(map[string]bool),
	}
}

// PoemID returns the poem this board is scoped to.
func (b *ReviewBoard) PoemID() string { return b.poemID }

// Load fetches the authoritative list from the store. On a read failure the
// local list is left empty and the error is returned for logging.
func (b *ReviewBoard) Load(ctx context.Context) error {
	callCtx, release := b.bind(ctx)
	defer release()

	reviews, err := b.service.GetReviewsByPoemID(callCtx, b.poemID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx.Err() != nil {
		return ErrBoardClosed
	}
	if err != nil {
		b.loaded = true
		b.reviews = nil
		b.loads++
		b.logger.Warn("Failed to load reviews", zap.Error(err))
		return err
	}
	b.setReviews(reviews)
	return nil
}

// EnsureLoaded loads the list once; later calls are no-ops.
func (b *ReviewBoard) EnsureLoaded(ctx context.Context) error {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if loaded {
		return nil
	}
	return b.Load(ctx)
}

// Submit writes a draft through the store. Only a confirmed write is prepended
// to the local list. With RefetchAfterWrite the list is read again instead; if
// that read fails the confirmed review is prepended to the list already held.
func (b *ReviewBoard) Submit(ctx context.Context, draft models.ReviewDraft) SubmitResult {
	if draft.PoemID == "" {
		draft.PoemID = b.poemID
	}
	if draft.PoemID != b.poemID {
		return SubmitResult{Err: fmt.Errorf("%w: draft targets poem '%s' on board for '%s'", ErrInvalidReview, draft.PoemID, b.poemID)}
	}
	if b.ctx.Err() != nil {
		return SubmitResult{Err: ErrBoardClosed}
	}

	callCtx, release := b.bind(ctx)
	review, err := b.service.AddReview(callCtx, draft)
	release()
	if err != nil {
		return SubmitResult{Err: err}
	}

	var fresh []*models.Review
	var refetchErr error
	if b.opts.RefetchAfterWrite {
		callCtx, release := b.bind(ctx)
		fresh, refetchErr = b.service.GetReviewsByPoemID(callCtx, b.poemID)
		release()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx.Err() != nil {
		return SubmitResult{Review: review, Err: ErrBoardClosed}
	}
	if b.opts.RefetchAfterWrite && refetchErr == nil {
		b.setReviews(fresh)
		return SubmitResult{Review: copyReview(review, false)}
	}
	if refetchErr != nil {
		b.logger.Warn("Failed to re-fetch reviews after write; keeping local list", zap.Error(refetchErr))
	}
	b.reviews = append([]*models.Review{review}, b.reviews...)
	return SubmitResult{Review: copyReview(review, false)}
}

// Like increments a review's like counter once per board. A second like, or a like
// while the first is still in flight, is rejected with ErrAlreadyLiked without
// touching the store. The local count changes only after the store confirms.
func (b *ReviewBoard) Like(ctx context.Context, reviewID string) LikeResult {
	if err := b.EnsureLoaded(ctx); err != nil {
		return LikeResult{ReviewID: reviewID, Err: err}
	}

	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		return LikeResult{ReviewID: reviewID, Err: ErrBoardClosed}
	}
	local := b.find(reviewID)
	if local == nil {
		b.mu.Unlock()
		return LikeResult{ReviewID: reviewID, Err: fmt.Errorf("%w: id '%s' on poem '%s'", ErrReviewNotFound, reviewID, b.poemID)}
	}
	if b.liked[reviewID] || b.pending[reviewID] {
		likes := local.Likes
		b.mu.Unlock()
		return LikeResult{ReviewID: reviewID, Likes: likes, Liked: true, Err: ErrAlreadyLiked}
	}
	b.pending[reviewID] = true
	loads := b.loads
	b.mu.Unlock()

	callCtx, release := b.bind(ctx)
	err := b.service.LikeReview(callCtx, b.poemID, reviewID)
	release()

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, reviewID)
	if b.ctx.Err() != nil {
		return LikeResult{ReviewID: reviewID, Err: ErrBoardClosed}
	}
	local = b.find(reviewID)
	if err != nil {
		likes := 0
		if local != nil {
			likes = local.Likes
		}
		return LikeResult{ReviewID: reviewID, Likes: likes, Err: err}
	}
	b.liked[reviewID] = true
	if local == nil {
		return LikeResult{ReviewID: reviewID, Liked: true}
	}
	// A reload during the call already carries the stored count.
	if b.loads == loads {
		local.Likes++
	}
	return LikeResult{ReviewID: reviewID, Likes: local.Likes, Liked: true}
}

// Snapshot returns copies of the local reviews with the viewer's liked flags applied.
func (b *ReviewBoard) Snapshot() []models.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Review, 0, len(b.reviews))
	for _, r := range b.reviews {
		out = append(out, *copyReview(r, b.liked[r.ID]))
	}
	return out
}

// Loaded reports whether the list has been fetched at least once.
func (b *ReviewBoard) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// Close cancels in-flight store calls; their results are dropped.
func (b *ReviewBoard) Close() {
	b.cancel()
}

// Closed reports whether the board was closed.
func (b *ReviewBoard) Closed() bool {
	return b.ctx.Err() != nil
}

// bind derives a context cancelled by either the caller or the board.
func (b *ReviewBoard) bind(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(b.ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// setReviews must be called with b.mu held.
func (b *ReviewBoard) setReviews(reviews []*models.Review) {
	b.loaded = true
	b.reviews = reviews
	b.loads++
}

// find must be called with b.mu held.
func (b *ReviewBoard) find(reviewID string) *models.Review {
	for _, r := range b.reviews {
		if r.ID == reviewID {
			return r
		}
	}
	return nil
}

func copyReview(r *models.Review, liked bool) *models.Review {
	c := *r
	c.IsLiked = liked
	return &c
}
