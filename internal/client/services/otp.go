package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/models"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
)

type OTPState string

const (
	OTPStateIdle          OTPState = "idle"
	OTPStateSending       OTPState = "sending"
	OTPStateAwaitingInput OTPState = "awaiting_input"
	OTPStateVerifying     OTPState = "verifying"
	OTPStateSucceeded     OTPState = "succeeded"
	OTPStateFailed        OTPState = "failed"
)

type OTPFailure string

const (
	OTPFailureNone        OTPFailure = ""
	OTPFailureNetwork     OTPFailure = "network"
	OTPFailureInvalidCode OTPFailure = "invalid_code"
	OTPFailureExpired     OTPFailure = "expired"
)

const (
	// OTPDigits is the number of input cells.
	OTPDigits = 6
	// OTPTTLSeconds is the validity window of a dispatched code.
	OTPTTLSeconds = 300
)

var (
	ErrNotADigit        = errors.New("not a digit")
	ErrNotAwaitingInput = errors.New("challenge is not awaiting input")
)

// OTPChallenge drives one 6-digit code verification: digit entry with
// focus handling, the one-second expiry countdown, verify and resend
// calls, and recovery from both wrong-code and no-response failures. The
// two failure kinds are kept distinct on purpose: a wrong code is fixed by
// editing, an unreachable server is fixed by retrying.
//
// A challenge owns its countdown ticker; whoever navigates away must call
// Cancel so the tick stops and late responses are dropped.
type OTPChallenge struct {
	mu sync.Mutex

	svc   *LoginService
	email string
	role  models.Role

	state     OTPState
	failure   OTPFailure
	digits    [OTPDigits]byte // '0'..'9'; zero byte means empty
	focus     int
	remaining int
	canResend bool

	// gen is bumped on resend and cancel; an in-flight call whose gen no
	// longer matches must not mutate state.
	gen        int
	closed     bool
	cancelTick context.CancelFunc
}

// NewChallenge creates an idle challenge for the given account. Send must
// be called to dispatch the code before input makes sense.
func (s *LoginService) NewChallenge(email string, role models.Role) *OTPChallenge {
	return &OTPChallenge{
		svc:       s,
		email:     email,
		role:      role,
		state:     OTPStateIdle,
		remaining: OTPTTLSeconds,
	}
}

// Send dispatches the one-time code email. On success the challenge is
// ready for input: cells empty, focus on the first cell, full countdown.
func (c *OTPChallenge) Send(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return common.ErrChallengeClosed
	}
	c.state = OTPStateSending
	gen := c.gen
	c.mu.Unlock()

	err := c.svc.client.DispatchOTP(ctx, c.email, c.role)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return common.ErrChallengeClosed
	}
	if err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			c.state = OTPStateFailed
			c.failure = OTPFailureNetwork
		} else {
			c.state = OTPStateIdle
		}
		return err
	}
	c.resetForEntryLocked()
	return nil
}

func (c *OTPChallenge) resetForEntryLocked() {
	c.state = OTPStateAwaitingInput
	c.failure = OTPFailureNone
	c.digits = [OTPDigits]byte{}
	c.focus = 0
	c.remaining = OTPTTLSeconds
	c.canResend = false
}

// StartCountdown launches the repeating one-second tick that drives the
// expiry timer. It stops when ctx ends or Cancel is called.
func (c *OTPChallenge) StartCountdown(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return
	}
	if c.cancelTick != nil {
		c.cancelTick()
	}
	c.cancelTick = cancel
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Tick()
			case <-tickCtx.Done():
				return
			}
		}
	}()
}

// Tick advances the countdown by one second. Exported so tests can drive
// time directly instead of sleeping. Reaching zero enables resend but
// leaves the entered digits in place.
func (c *OTPChallenge) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.remaining <= 0 || c.state == OTPStateSucceeded {
		return
	}
	c.remaining--
	if c.remaining == 0 {
		c.canResend = true
	}
}

// EnterDigit puts d into the focused cell and advances focus to the next
// empty cell. Rejected while the challenge is blocked on a network
// failure.
func (c *OTPChallenge) EnterDigit(d byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return common.ErrChallengeClosed
	}
	if c.failure == OTPFailureNetwork {
		return common.ErrNetworkUnavailable
	}
	if c.state != OTPStateAwaitingInput {
		return ErrNotAwaitingInput
	}
	if d < '0' || d > '9' {
		return ErrNotADigit
	}

	c.digits[c.focus] = d
	for i := c.focus + 1; i < OTPDigits; i++ {
		if c.digits[i] == 0 {
			c.focus = i
			break
		}
	}
	return nil
}

// Backspace clears the focused cell, or moves focus back one cell when
// the focused cell is already empty.
func (c *OTPChallenge) Backspace() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return common.ErrChallengeClosed
	}
	if c.failure == OTPFailureNetwork {
		return common.ErrNetworkUnavailable
	}
	if c.state != OTPStateAwaitingInput {
		return ErrNotAwaitingInput
	}

	if c.digits[c.focus] != 0 {
		c.digits[c.focus] = 0
	} else if c.focus > 0 {
		c.focus--
	}
	return nil
}

func (c *OTPChallenge) codeLocked() (string, bool) {
	var b strings.Builder
	for _, d := range c.digits {
		if d == 0 {
			return "", false
		}
		b.WriteByte(d)
	}
	return b.String(), true
}

// Submit verifies the entered code. Incomplete or expired input is
// rejected locally without any network call. On success the session is
// persisted exactly as in the direct login path and the challenge
// finishes; on a wrong code the digits stay editable; on a transport
// failure the challenge blocks behind Retry/Resend.
func (c *OTPChallenge) Submit(ctx context.Context) (*LoginResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, common.ErrChallengeClosed
	}
	if c.failure == OTPFailureNetwork {
		c.mu.Unlock()
		return nil, common.ErrNetworkUnavailable
	}
	if c.state != OTPStateAwaitingInput {
		c.mu.Unlock()
		return nil, ErrNotAwaitingInput
	}
	if c.remaining <= 0 {
		c.failure = OTPFailureExpired
		c.mu.Unlock()
		return nil, common.ErrOTPExpired
	}
	code, ok := c.codeLocked()
	if !ok {
		c.mu.Unlock()
		return nil, common.ErrOTPIncomplete
	}
	c.state = OTPStateVerifying
	gen := c.gen
	c.mu.Unlock()

	pair, serverUser, err := c.svc.client.VerifyOTP(ctx, c.email, c.role, code)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return nil, common.ErrChallengeClosed
	}
	if err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			c.state = OTPStateFailed
			c.failure = OTPFailureNetwork
		} else {
			c.state = OTPStateAwaitingInput
			c.failure = OTPFailureInvalidCode
		}
		c.mu.Unlock()
		return nil, err
	}
	c.mu.Unlock()

	res, err := c.svc.completeTokenLogin(ctx, c.email, c.role, pair, serverUser)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return nil, common.ErrChallengeClosed
	}
	if err != nil {
		c.state = OTPStateAwaitingInput
		c.failure = OTPFailureInvalidCode
		return nil, err
	}

	c.state = OTPStateSucceeded
	c.closed = true
	if c.cancelTick != nil {
		c.cancelTick()
	}
	return res, nil
}

// Retry acknowledges a network failure and unblocks the form. Digits are
// preserved so the user can submit the same code again.
func (c *OTPChallenge) Retry() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return common.ErrChallengeClosed
	}
	if c.failure != OTPFailureNetwork {
		return nil
	}
	c.failure = OTPFailureNone
	c.state = OTPStateAwaitingInput
	return nil
}

// Resend re-dispatches the code. Allowed after expiry or as recovery from
// a network failure. On success all cells reset to empty, the countdown
// restarts at the full window, and focus returns to the first cell.
func (c *OTPChallenge) Resend(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return common.ErrChallengeClosed
	}
	if !c.canResend && c.failure != OTPFailureNetwork {
		c.mu.Unlock()
		return common.ErrResendNotAllowed
	}
	c.state = OTPStateSending
	// Anything still in flight for the old code is stale from here on.
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	err := c.svc.client.DispatchOTP(ctx, c.email, c.role)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return common.ErrChallengeClosed
	}
	if err != nil {
		if errors.Is(err, common.ErrNetworkUnavailable) {
			c.state = OTPStateFailed
			c.failure = OTPFailureNetwork
		} else {
			// The server refused the resend; the previous code may still
			// be valid, so leave the form as it was.
			c.state = OTPStateAwaitingInput
		}
		return err
	}
	c.resetForEntryLocked()
	return nil
}

// Cancel tears the challenge down: the countdown stops and any in-flight
// verify or resend response is dropped without mutating state. Idempotent.
func (c *OTPChallenge) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	if c.cancelTick != nil {
		c.cancelTick()
	}
}

// --- accessors for the UI ---

func (c *OTPChallenge) Email() string { return c.email }

func (c *OTPChallenge) Role() models.Role { return c.role }

func (c *OTPChallenge) State() OTPState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *OTPChallenge) Failure() OTPFailure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

func (c *OTPChallenge) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *OTPChallenge) CanResend() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canResend
}

func (c *OTPChallenge) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Digits returns a copy of the input cells; zero bytes are empty cells.
func (c *OTPChallenge) Digits() [OTPDigits]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.digits
}
