package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"linktrap/database"
	"linktrap/geo"
	"linktrap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret-token"

type fakeLocator struct {
	loc geo.Location
	err error
}

func (f fakeLocator) Lookup(_ context.Context, _ string) (geo.Location, error) {
	return f.loc, f.err
}

func testMeta() ClickMeta {
	return ClickMeta{
		IP:        "198.51.100.7",
		UserAgent: "Mozilla/5.0",
		Referer:   "https://mail.example.com/",
		Path:      "/click/x",
	}
}

func TestRecordClickUnknownLink(t *testing.T) {
	setupDB(t)

	_, err := RecordClick(context.Background(), "no-such-id", testToken, testToken, nil, testMeta())
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.Zero(t, countClicks(t))
}

func TestRecordClickWrongTokenHasNoSideEffects(t *testing.T) {
	setupDB(t)

	link := makeLink(t, "payroll.pdf", "q1", time.Now().UTC())

	_, err := RecordClick(context.Background(), link.ID, "wrong", testToken, nil, testMeta())
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, countClicks(t))
}

func TestRecordClickEmptySecretNeverMatches(t *testing.T) {
	setupDB(t)

	link := makeLink(t, "payroll.pdf", "", time.Now().UTC())

	_, err := RecordClick(context.Background(), link.ID, "", "", nil, testMeta())
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, countClicks(t))
}

func TestRecordClickCreatesOneRowPerCall(t *testing.T) {
	setupDB(t)

	link := makeLink(t, "payroll.pdf", "q1", time.Now().UTC())

	got, err := RecordClick(context.Background(), link.ID, testToken, testToken, nil, testMeta())
	require.NoError(t, err)
	assert.Equal(t, link.ID, got.ID)
	assert.EqualValues(t, 1, countClicks(t))

	// Replays are counted again: every access is signal.
	_, err = RecordClick(context.Background(), link.ID, testToken, testToken, nil, testMeta())
	require.NoError(t, err)
	assert.EqualValues(t, 2, countClicks(t))

	var click models.Click
	require.NoError(t, database.DB.Order("id asc").First(&click).Error)
	assert.Equal(t, link.ID, click.LinkID)
	assert.Equal(t, "198.51.100.7", click.IP)
	assert.Equal(t, "Mozilla/5.0", click.UserAgent)
	assert.Equal(t, "https://mail.example.com/", click.Referer)
	assert.Equal(t, "/click/x", click.Path)
	assert.Nil(t, click.Country)
}

func TestRecordClickGeolocationFailureIsSwallowed(t *testing.T) {
	setupDB(t)

	link := makeLink(t, "payroll.pdf", "", time.Now().UTC())
	locator := fakeLocator{err: errors.New("provider timeout")}

	_, err := RecordClick(context.Background(), link.ID, testToken, testToken, locator, testMeta())
	require.NoError(t, err)
	assert.EqualValues(t, 1, countClicks(t))

	var click models.Click
	require.NoError(t, database.DB.First(&click).Error)
	assert.Nil(t, click.Country)
	assert.Nil(t, click.Lat)
}

func TestRecordClickStoresGeolocation(t *testing.T) {
	setupDB(t)

	link := makeLink(t, "payroll.pdf", "", time.Now().UTC())
	lat, lon := 48.85, 2.35
	locator := fakeLocator{loc: geo.Location{
		Country: "France", Region: "IDF", City: "Paris", Lat: &lat, Lon: &lon,
	}}

	_, err := RecordClick(context.Background(), link.ID, testToken, testToken, locator, testMeta())
	require.NoError(t, err)

	var click models.Click
	require.NoError(t, database.DB.First(&click).Error)
	require.NotNil(t, click.Country)
	assert.Equal(t, "France", *click.Country)
	require.NotNil(t, click.City)
	assert.Equal(t, "Paris", *click.City)
	require.NotNil(t, click.Lat)
	assert.InDelta(t, 48.85, *click.Lat, 0.001)
}

func TestQueryClicksTimeWindow(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	link := makeLink(t, "payroll.pdf", "q1", now)
	old := makeClick(t, link.ID, now.Add(-48*time.Hour), "1.1.1.1", "ua", "")
	recent := makeClick(t, link.ID, now.Add(-1*time.Hour), "2.2.2.2", "ua", "")

	page, err := QueryClicks(ClickFilter{Days: "1"}, 1, 25)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, recent.ID, page.Items[0].ID)
	assert.NotEqual(t, old.ID, page.Items[0].ID)
}

func TestQueryClicksIgnoresInvalidDays(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	link := makeLink(t, "payroll.pdf", "", now)
	makeClick(t, link.ID, now.Add(-72*time.Hour), "1.1.1.1", "ua", "")

	page, err := QueryClicks(ClickFilter{Days: "soon"}, 1, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestQueryClicksConjunctiveFilters(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	a := makeLink(t, "Payroll_Q1.pdf", "q1", now)
	b := makeLink(t, "invoice.pdf", "q2", now)
	makeClick(t, a.ID, now, "1.1.1.1", "Firefox on Windows", "")
	makeClick(t, a.ID, now, "2.2.2.2", "curl/8.0", "")
	makeClick(t, b.ID, now, "1.1.1.1", "Firefox on Windows", "")

	page, err := QueryClicks(ClickFilter{IP: "1.1.1.1", Campaign: "q1"}, 1, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	// Case-insensitive substring on the decoy file name.
	page, err = QueryClicks(ClickFilter{FileName: "payroll"}, 1, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestQueryClicksFreeTextSearch(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	a := makeLink(t, "report.pdf", "", now)
	makeClick(t, a.ID, now, "1.1.1.1", "Mozilla/5.0 (Windows NT)", "https://webmail.corp/")
	makeClick(t, a.ID, now, "2.2.2.2", "curl/8.0", "")

	// OR semantics across user agent, referer and file name.
	page, err := QueryClicks(ClickFilter{Search: "WEBMAIL"}, 1, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	page, err = QueryClicks(ClickFilter{Search: "report"}, 1, 25)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
}

func TestQueryClicksPaginationAndOrder(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	link := makeLink(t, "doc.pdf", "", now)
	var ids []uint
	for i := 0; i < 5; i++ {
		c := makeClick(t, link.ID, now.Add(time.Duration(i)*time.Minute), "1.1.1.1", "ua", "")
		ids = append(ids, c.ID)
	}

	page, err := QueryClicks(ClickFilter{}, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].ID)
	assert.Equal(t, ids[3], page.Items[1].ID)

	page, err = QueryClicks(ClickFilter{}, 3, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
}

func TestQueryClicksTimestampTiesBreakByInsertion(t *testing.T) {
	setupDB(t)

	ts := time.Now().UTC().Truncate(time.Second)
	link := makeLink(t, "doc.pdf", "", ts)
	first := makeClick(t, link.ID, ts, "1.1.1.1", "ua", "")
	second := makeClick(t, link.ID, ts, "2.2.2.2", "ua", "")

	page, err := QueryClicks(ClickFilter{}, 1, 25)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)
}

func TestQueryClicksClampsBounds(t *testing.T) {
	setupDB(t)

	page, err := QueryClicks(ClickFilter{}, -3, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 200, page.PerPage)
}

func TestExportRowsIncludesEverything(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	link := makeLink(t, "doc.pdf", "q1", now)
	for i := 0; i < 250; i++ {
		makeClick(t, link.ID, now.Add(time.Duration(i)*time.Second), "1.1.1.1", "ua", "")
	}

	rows, err := ExportRows()
	require.NoError(t, err)
	assert.Len(t, rows, 250)
	assert.EqualValues(t, countClicks(t), len(rows))
}

func TestAggregateCampaigns(t *testing.T) {
	setupDB(t)

	now := time.Now().UTC()
	// The documented example: 3 links in q1, 2 valid clicks on link A.
	a := makeLink(t, "payroll.pdf", "q1", now)
	makeLink(t, "payroll.pdf", "q1", now)
	makeLink(t, "payroll.pdf", "q1", now)
	makeClick(t, a.ID, now, "1.1.1.1", "ua", "")
	makeClick(t, a.ID, now, "1.1.1.1", "ua", "")

	// A campaign with zero clicks and a no-campaign link.
	makeLink(t, "invoice.pdf", "cold", now)
	loose := makeLink(t, "misc.pdf", "", now)
	makeClick(t, loose.ID, now, "2.2.2.2", "ua", "")

	stats, err := AggregateCampaigns()
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byName := make(map[string]CampaignStats)
	var totalClicks int64
	for _, s := range stats {
		byName[s.Campaign] = s
		totalClicks += s.Clicks
	}

	q1 := byName["q1"]
	assert.EqualValues(t, 3, q1.Links)
	assert.EqualValues(t, 2, q1.Clicks)
	assert.InDelta(t, 2.0/3.0, q1.CTR, 0.0001)

	cold := byName["cold"]
	assert.EqualValues(t, 1, cold.Links)
	assert.Zero(t, cold.Clicks)
	assert.Zero(t, cold.CTR)

	none := byName[models.NoCampaign]
	assert.EqualValues(t, 1, none.Links)
	assert.EqualValues(t, 1, none.Clicks)

	assert.Equal(t, countClicks(t), totalClicks)

	// Ordered by click count descending.
	assert.Equal(t, "q1", stats[0].Campaign)
}
