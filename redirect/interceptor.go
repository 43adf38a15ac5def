package redirect

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultScheme       = "irtech"
	DefaultPinCodeParam = "pincode"
)

// Action tells the browser view what to do with an attempted navigation.
type Action int

const (
	Allow Action = iota
	Suppress
)

func (a Action) String() string {
	if a == Suppress {
		return "suppress"
	}
	return "allow"
}

// Decision is the outcome of inspecting one navigation target.
// Code is only meaningful when Action is Suppress.
type Decision struct {
	Action Action
	Code   int
}

// Interceptor recognises the provider's terminal redirect: a URL using the callback
// scheme whose query carries the pin code parameter.
type Interceptor struct {
	scheme string
	param  string
}

func New(scheme, pinCodeParam string) *Interceptor {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if pinCodeParam == "" {
		pinCodeParam = DefaultPinCodeParam
	}
	return &Interceptor{scheme: scheme, param: pinCodeParam}
}

// Inspect classifies target. A claimed URL with a non-integer code is allowed through
// so that unrelated links on the same scheme cannot stall the login.
func (i *Interceptor) Inspect(target string) Decision {
	u, err := url.Parse(target)
	if err != nil {
		return Decision{Action: Allow}
	}
	if !strings.EqualFold(u.Scheme, i.scheme) {
		return Decision{Action: Allow}
	}
	query := u.Query()
	if !query.Has(i.param) {
		return Decision{Action: Allow}
	}
	code, err := strconv.Atoi(query.Get(i.param))
	if err != nil {
		log.Debug().Str("scheme", u.Scheme).Msg("Callback redirect with malformed pin code ignored")
		return Decision{Action: Allow}
	}
	return Decision{Action: Suppress, Code: code}
}

// Session tracks a single browser view. It emits at most one code; once emitted the
// session is terminal and every later navigation is suppressed.
type Session struct {
	interceptor *Interceptor
	mu          sync.Mutex
	terminal    bool
	codes       chan int
	done        chan struct{}
}

func (i *Interceptor) NewSession() *Session {
	return &Session{
		interceptor: i,
		codes:       make(chan int, 1),
		done:        make(chan struct{}),
	}
}

// Navigate is the navigation hook handed to the browser view. It returns true when the
// view must not load target.
func (s *Session) Navigate(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return true
	}
	decision := s.interceptor.Inspect(target)
	if decision.Action == Allow {
		return false
	}

	s.terminal = true
	s.codes <- decision.Code
	close(s.done)
	log.Debug().Msg("Pin code received from callback redirect")
	return true
}

// Code delivers the emitted pin code. It receives at most one value.
func (s *Session) Code() <-chan int {
	return s.codes
}

// Done is closed once the session has emitted its code.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Terminal reports whether the session already emitted a code.
func (s *Session) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}
