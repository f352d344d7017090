// Package seeder generates realistic analytics events for load testing and
// migration rehearsal.
package seeder

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/sitepulse-io/sitepulse/internal/models"
)

var (
	browsers    = []string{"Chrome", "Firefox", "Safari", "Edge", "Opera"}
	oses        = []string{"Windows", "macOS", "Linux", "iOS", "Android"}
	deviceTypes = []string{"desktop", "mobile", "tablet"}
	pages       = []string{"/", "/pricing", "/docs", "/blog", "/about", "/signup", "/features"}
	customNames = []string{"signup_click", "download", "video_play", "form_submit", "purchase"}
)

// Options controls generation.
type Options struct {
	TagID      string
	Domain     string
	Count      int
	TimeSpread time.Duration
	// PageViewRatio is the fraction of events that are page views; the
	// rest are custom events. Defaults to 0.85.
	PageViewRatio float64
}

// GenerateEvents produces Count events spread backwards over TimeSpread
// with jitter, so seeded time series look organic rather than uniform.
func GenerateEvents(opts Options) []models.EventRecord {
	if opts.PageViewRatio <= 0 || opts.PageViewRatio > 1 {
		opts.PageViewRatio = 0.85
	}
	if opts.Domain == "" {
		opts.Domain = gofakeit.DomainName()
	}

	now := time.Now().UTC()
	out := make([]models.EventRecord, 0, opts.Count)

	// A small pool of visitor ids so uniques stay below totals.
	visitorPool := make([]string, maxInt(opts.Count/5, 1))
	for i := range visitorPool {
		visitorPool[i] = uuid.New().String()
	}

	for i := 0; i < opts.Count; i++ {
		e := models.EventRecord{
			TagID:           opts.TagID,
			Browser:         pick(browsers),
			OperatingSystem: pick(oses),
			DeviceType:      pick(deviceTypes),
			Country:         gofakeit.CountryAbr(),
			Region:          gofakeit.State(),
			City:            gofakeit.City(),
			PostalCode:      gofakeit.Zip(),
			Referer:         referer(),
			RID:             pick(visitorPool),
			ScreenWidth:     []int{1920, 1440, 1366, 768, 390}[rand.Intn(5)],
			ScreenHeight:    []int{1080, 900, 768, 1024, 844}[rand.Intn(5)],
			CreatedAt:       eventTime(now, i, opts.Count, opts.TimeSpread),
		}

		page := pick(pages)
		e.PageURL = "https://" + opts.Domain + page
		e.ClientPageURL = e.PageURL

		if rand.Float64() < opts.PageViewRatio {
			e.Event = "page_view"
		} else {
			e.Event = pick(customNames)
			meta, _ := json.Marshal(map[string]interface{}{
				"label": gofakeit.BuzzWord(),
				"value": rand.Intn(100),
			})
			e.CustomData = meta
		}

		out = append(out, e)
	}
	return out
}

// eventTime spaces events evenly over the spread with ±40% jitter, placed
// backwards from now.
func eventTime(now time.Time, index, total int, spread time.Duration) time.Time {
	if spread <= 0 || total == 0 {
		return now
	}
	baseInterval := float64(spread) / float64(total)
	offset := time.Duration(float64(index) * baseInterval)

	jitter := time.Duration((rand.Float64()*2 - 1) * baseInterval * 0.4)
	offset += jitter
	if offset < 0 {
		offset = 0
	}
	if offset > spread {
		offset = spread
	}
	return now.Add(-(spread - offset))
}

func referer() string {
	switch rand.Intn(4) {
	case 0:
		return "https://www.google.com/"
	case 1:
		return "https://news.ycombinator.com/"
	case 2:
		return "https://" + gofakeit.DomainName() + "/"
	default:
		return ""
	}
}

func pick(values []string) string {
	return values[rand.Intn(len(values))]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
