package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// manila is the display timezone for all user-facing dates. Asia/Manila has
// no DST, so a fixed offset fallback is safe if the tzdata lookup fails.
var manila = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		return time.FixedZone("PHT", 8*60*60)
	}
	return loc
}()

// FormatCurrency renders an amount in Philippine pesos with comma grouping
// and two decimals, e.g. 1234.5 -> "₱1,234.50".
func FormatCurrency(amount float64) string {
	neg := amount < 0
	amount = math.Abs(amount)

	whole := int64(amount)
	cents := int64(math.Round((amount - float64(whole)) * 100))
	if cents == 100 { // rounding carried into the next peso
		whole++
		cents = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var grouped strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(ch)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s₱%s.%02d", sign, grouped.String(), cents)
}

// FormatDate renders a timestamp in the Manila timezone with a long month,
// e.g. "January 2, 2026".
func FormatDate(t time.Time) string {
	return t.In(manila).Format("January 2, 2006")
}

// ValidateImageFile checks an upload against the configured limits: size
// ceiling and MIME whitelist.
func (r *Registry) ValidateImageFile(name string, size int64, mimeType string) error {
	if size > r.Upload.MaxFileSize {
		return fmt.Errorf("file %q exceeds the %d MB size limit", name, r.Upload.MaxFileSize/(1024*1024))
	}
	for _, allowed := range r.Upload.AllowedImageTypes {
		if mimeType == allowed {
			return nil
		}
	}
	return fmt.Errorf("file %q has unsupported type %q (allowed: %s)",
		name, mimeType, strings.Join(r.Upload.AllowedImageTypes, ", "))
}

// GenerateID produces an entity identifier of the form
// "<prefix>_<base36 millis><random suffix>". The clock component keeps IDs
// roughly sortable by creation time; the random suffix breaks collisions
// within the same millisecond.
func GenerateID(prefix string) string {
	clock := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "_" + clock + suffix
}

// Debounce returns a wrapped fn that fires only after calls have been quiet
// for the given interval. The leading edge is suppressed: a burst of calls
// results in exactly one trailing invocation.
func Debounce(interval time.Duration, fn func()) func() {
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(interval, fn)
	}
}
