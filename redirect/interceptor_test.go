package redirect_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/jrsteele09/sgo-connect/redirect"
	"github.com/stretchr/testify/require"
)

func TestInterceptor_Inspect(t *testing.T) {
	i := redirect.New("", "")

	tests := []struct {
		name   string
		target string
		want   redirect.Decision
	}{
		{"callback with code", "irtech://auth?pincode=123456", redirect.Decision{Action: redirect.Suppress, Code: 123456}},
		{"upper case scheme", "IRTECH://auth?pincode=42", redirect.Decision{Action: redirect.Suppress, Code: 42}},
		{"extra params", "irtech://x/y?state=abc&pincode=7", redirect.Decision{Action: redirect.Suppress, Code: 7}},
		{"malformed code", "irtech://auth?pincode=12ab", redirect.Decision{Action: redirect.Allow}},
		{"empty code", "irtech://auth?pincode=", redirect.Decision{Action: redirect.Allow}},
		{"missing param", "irtech://auth?code=123", redirect.Decision{Action: redirect.Allow}},
		{"https with param", "https://sgo.example.ru/?pincode=123", redirect.Decision{Action: redirect.Allow}},
		{"plain page", "https://esia.gosuslugi.ru/login", redirect.Decision{Action: redirect.Allow}},
		{"unparseable", "://%zz", redirect.Decision{Action: redirect.Allow}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, i.Inspect(tc.target))
		})
	}
}

func TestInterceptor_InspectEmitsParsedInteger(t *testing.T) {
	i := redirect.New("irtech", "pincode")
	for _, code := range []int{0, 1, 999999, 2147483647} {
		d := i.Inspect("irtech://callback?pincode=" + strconv.Itoa(code))
		require.Equal(t, redirect.Suppress, d.Action)
		require.Equal(t, code, d.Code)
	}
}

func TestInterceptor_CustomSchemeAndParam(t *testing.T) {
	i := redirect.New("myapp", "pin")
	require.Equal(t, redirect.Suppress, i.Inspect("myapp://cb?pin=5").Action)
	require.Equal(t, redirect.Allow, i.Inspect("irtech://cb?pincode=5").Action)
}

func TestSession_EmitsAtMostOnce(t *testing.T) {
	s := redirect.New("", "").NewSession()

	require.False(t, s.Navigate("https://sgo.example.ru/authorize/login?mobile"))
	require.False(t, s.Terminal())

	require.True(t, s.Navigate("irtech://auth?pincode=111"))
	require.True(t, s.Terminal())

	// Terminal sessions suppress everything, including ordinary pages.
	require.True(t, s.Navigate("irtech://auth?pincode=222"))
	require.True(t, s.Navigate("https://sgo.example.ru/"))

	require.Equal(t, 111, <-s.Code())
	select {
	case <-s.Code():
		t.Fatal("second code emitted")
	default:
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestSession_ConcurrentNavigations(t *testing.T) {
	s := redirect.New("", "").NewSession()

	var wg sync.WaitGroup
	for n := 0; n < 20; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Navigate("irtech://auth?pincode=" + strconv.Itoa(n))
		}(n)
	}
	wg.Wait()

	require.Len(t, s.Code(), 1)
}

func TestSession_MalformedKeepsSessionOpen(t *testing.T) {
	s := redirect.New("", "").NewSession()
	require.False(t, s.Navigate("irtech://auth?pincode=abc"))
	require.False(t, s.Terminal())
	require.True(t, s.Navigate("irtech://auth?pincode=9"))
	require.Equal(t, 9, <-s.Code())
}
