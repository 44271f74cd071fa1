package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tng-poetry-backend/internal/auth"
	"tng-poetry-backend/internal/auth/authtest"
	"tng-poetry-backend/internal/core"
	"tng-poetry-backend/internal/models"
	"tng-poetry-backend/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sessionFixture struct {
	verifier *authtest.Verifier
	provider *auth.FirebaseProvider
	users    *testutil.UserRepoStub
	reviews  *testutil.ReviewRepoStub
	userSvc  core.UserService
	svc      core.ReviewService
	session  *auth.Session
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		verifier: authtest.NewVerifier(),
		users:    testutil.NewUserRepoStub(),
		reviews:  testutil.NewReviewRepoStub(),
	}
	f.verifier.AddUser("tok-42", "uid-42", "Kumar", "kumar@example.com", "")
	f.verifier.AddUser("tok-anon", "uid-anon", "", "", "")
	f.provider = auth.NewFirebaseProvider(f.verifier, false, nil)
	f.userSvc = core.NewUserService(f.users, nil, 0, nil)
	f.svc = core.NewReviewService(f.reviews, f.userSvc, testutil.NewPoemSet("1", "2"), &testutil.PublisherStub{}, nil)
	f.session = auth.NewSession("s-1", f.provider, f.userSvc, f.svc, auth.SessionOptions{})
	t.Cleanup(f.session.Close)
	return f
}

func TestSession_StartsLoadingThenSettles(t *testing.T) {
	f := newSessionFixture(t)

	assert.Equal(t, auth.StatusLoading, f.session.State().Status)

	f.session.Start()
	st := f.session.State()
	assert.Equal(t, auth.StatusUnauthenticated, st.Status)
	assert.Nil(t, st.User)
	assert.False(t, st.Authenticated())
}

func TestSession_FirstSignInCreatesProfile(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	before := time.Now().UTC()
	ok := f.session.LoginWithGoogle(context.Background(), "tok-42")
	require.True(t, ok)

	st := f.session.State()
	require.True(t, st.Authenticated())
	assert.Equal(t, "uid-42", st.User.ID)
	assert.Equal(t, "Kumar", st.User.Name)
	assert.Equal(t, "kumar@example.com", st.User.Email)
	assert.False(t, st.User.JoinedDate.Before(before))
	assert.Equal(t, 1, f.users.CreateCalls)

	user, ok := f.session.User()
	require.True(t, ok)
	assert.Equal(t, "uid-42", user.ID)
}

func TestSession_SignInWithoutDisplayName(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	require.True(t, f.session.LoginWithGoogle(context.Background(), "tok-anon"))
	st := f.session.State()
	require.True(t, st.Authenticated())
	assert.Equal(t, models.DefaultUserName, st.User.Name)
	assert.Empty(t, st.User.Email)
	assert.Empty(t, st.User.Avatar)
}

func TestSession_LoginFailureReturnsFalse(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	assert.False(t, f.session.LoginWithGoogle(context.Background(), "forged"))
	assert.Equal(t, auth.StatusUnauthenticated, f.session.State().Status)
	assert.Equal(t, 0, f.users.CreateCalls)
}

func TestSession_ProfileFailureStaysUnauthenticated(t *testing.T) {
	f := newSessionFixture(t)
	f.users.Err = errors.New("unavailable")
	f.session.Start()

	assert.True(t, f.session.LoginWithGoogle(context.Background(), "tok-42"))
	st := f.session.State()
	assert.Equal(t, auth.StatusUnauthenticated, st.Status)
	assert.Nil(t, st.User)
	assert.NotEmpty(t, st.LastError)
}

func TestSession_LogoutDropsBoards(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()
	require.True(t, f.session.LoginWithGoogle(context.Background(), "tok-42"))

	board, err := f.session.Reviews("1")
	require.NoError(t, err)
	same, err := f.session.Reviews("1")
	require.NoError(t, err)
	assert.Same(t, board, same)

	require.NoError(t, f.session.Logout(context.Background()))
	assert.Equal(t, auth.StatusUnauthenticated, f.session.State().Status)
	assert.True(t, board.Closed())

	fresh, err := f.session.Reviews("1")
	require.NoError(t, err)
	assert.NotSame(t, board, fresh)
}

func TestSession_SubscribeReceivesTransitions(t *testing.T) {
	f := newSessionFixture(t)

	var mu sync.Mutex
	var seen []auth.Status
	unsubscribe := f.session.Subscribe(func(st auth.AuthState) {
		mu.Lock()
		seen = append(seen, st.Status)
		mu.Unlock()
	})

	f.session.Start()
	require.True(t, f.session.LoginWithGoogle(context.Background(), "tok-42"))
	unsubscribe()
	require.NoError(t, f.session.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []auth.Status{auth.StatusUnauthenticated, auth.StatusAuthenticated}, seen)
}

func TestSession_CloseUnsubscribesFromProvider(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()

	board, err := f.session.Reviews("1")
	require.NoError(t, err)

	f.session.Close()
	f.session.Close()
	assert.True(t, f.session.Closed())
	assert.True(t, board.Closed())

	// A sign-in through the shared provider no longer reaches the closed session.
	_, err = f.provider.SignIn(context.Background(), "tok-42")
	require.NoError(t, err)
	assert.Equal(t, auth.StatusUnauthenticated, f.session.State().Status)
	assert.Equal(t, 0, f.users.CreateCalls)

	assert.False(t, f.session.LoginWithGoogle(context.Background(), "tok-42"))
	assert.True(t, errors.Is(f.session.Logout(context.Background()), auth.ErrSessionClosed))
	_, err = f.session.Reviews("1")
	assert.True(t, errors.Is(err, auth.ErrSessionClosed))
}

func TestSession_ReviewScenario(t *testing.T) {
	f := newSessionFixture(t)
	f.session.Start()
	require.True(t, f.session.LoginWithGoogle(context.Background(), "tok-42"))
	user, ok := f.session.User()
	require.True(t, ok)

	board, err := f.session.Reviews("1")
	require.NoError(t, err)
	require.NoError(t, board.Load(context.Background()))

	res := board.Submit(context.Background(), models.ReviewDraft{
		UserID:   user.ID,
		UserName: user.Name,
		Rating:   5,
		Comment:  "Beautiful",
	})
	require.True(t, res.OK(), "%v", res.Err)

	listed, err := f.svc.GetReviewsByPoemID(context.Background(), "1")
	require.NoError(t, err)
	require.NotEmpty(t, listed)
	assert.Equal(t, res.Review.ID, listed[0].ID)
	assert.Equal(t, 0, listed[0].Likes)

	require.True(t, board.Like(context.Background(), res.Review.ID).OK())
	listed, err = f.svc.GetReviewsByPoemID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, listed[0].Likes)
}
