package twse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stockDayPayload = `{
	"stat": "OK",
	"date": "20260130",
	"title": "115年01月 2330 台積電 各日成交資訊",
	"fields": ["日期","成交股數","成交金額","開盤價","最高價","最低價","收盤價","漲跌價差","成交筆數"],
	"data": [
		["115/01/29","33,272,472","3,310,112,539","99.50","101.00","99.00","100.00","+1.00","25,311"],
		["115/01/30","41,118,903","4,218,994,010","102.00","104.00","101.50","103.00","+3.00","30,582"]
	]
}`

const twt38uPayload = `{
	"stat": "OK",
	"date": "20260130",
	"title": "集中市場外資及陸資買賣超彙總表",
	"fields": ["排行","證券代號","證券名稱","買進股數","賣出股數","買賣超股數"],
	"data": [
		["1","2330","台積電","50,000,000","46,497,000","3,503,000"],
		["2","2317","鴻海","12,100,000","13,300,000","-1,200,000"]
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithRateLimit(1000))
}

func TestDailyQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchangeReport/STOCK_DAY", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("response"))
		assert.Equal(t, "20260130", r.URL.Query().Get("date"))
		assert.Equal(t, "2330", r.URL.Query().Get("stockNo"))
		w.Write([]byte(stockDayPayload))
	})

	quote, err := client.DailyQuote(context.Background(), "2330", "20260130")
	require.NoError(t, err)

	require.NotNil(t, quote.Name)
	assert.Equal(t, "台積電", *quote.Name)

	require.NotNil(t, quote.Price.Close)
	assert.Equal(t, "103", *quote.Price.Close)
	require.NotNil(t, quote.Price.Change)
	assert.Equal(t, "+3", *quote.Price.Change)
	require.NotNil(t, quote.Price.ChangePct)
	assert.Equal(t, "+3%", *quote.Price.ChangePct)
}

func TestDailyQuoteSingleRow(t *testing.T) {
	payload := `{"stat":"OK","title":"115年01月 2330 台積電 各日成交資訊",
		"fields":["日期","成交股數","成交金額","開盤價","最高價","最低價","收盤價","漲跌價差","成交筆數"],
		"data":[["115/01/30","41,118,903","4,218,994,010","102.00","104.00","101.50","1,030.00","+3.00","30,582"]]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	quote, err := client.DailyQuote(context.Background(), "2330", "20260130")
	require.NoError(t, err)

	require.NotNil(t, quote.Price.Close)
	assert.Equal(t, "1030", *quote.Price.Close)
	assert.Nil(t, quote.Price.Change)
	assert.Nil(t, quote.Price.ChangePct)
}

func TestDailyQuoteNoRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat":"很抱歉，沒有符合條件的資料!","data":[]}`))
	})

	quote, err := client.DailyQuote(context.Background(), "2330", "20260130")
	require.NoError(t, err)

	assert.Nil(t, quote.Name)
	assert.Nil(t, quote.Price.Close)
	assert.Nil(t, quote.Price.Change)
	assert.Nil(t, quote.Price.ChangePct)
}

func TestDailyQuoteSentinelClose(t *testing.T) {
	payload := `{"stat":"OK","title":"115年01月 2330 台積電 各日成交資訊",
		"fields":["日期","成交股數","成交金額","開盤價","最高價","最低價","收盤價","漲跌價差","成交筆數"],
		"data":[
			["115/01/29","0","0","--","--","--","100.00","+1.00","0"],
			["115/01/30","0","0","--","--","--","--","0.00","0"]
		]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	quote, err := client.DailyQuote(context.Background(), "2330", "20260130")
	require.NoError(t, err)

	// The latest close is the "--" sentinel, so no price fields at all.
	assert.Nil(t, quote.Price.Close)
	assert.Nil(t, quote.Price.Change)
	assert.Nil(t, quote.Price.ChangePct)
}

func TestDailyQuoteWrappedPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Relay responses sometimes wrap the body in noise.
		w.Write([]byte("<pre>" + stockDayPayload + "</pre>"))
	})

	quote, err := client.DailyQuote(context.Background(), "2330", "20260130")
	require.NoError(t, err)
	require.NotNil(t, quote.Price.Close)
	assert.Equal(t, "103", *quote.Price.Close)
}

func TestForeignNetShares(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fund/TWT38U", r.URL.Path)
		assert.Equal(t, "20260130", r.URL.Query().Get("date"))
		w.Write([]byte(twt38uPayload))
	})

	shares, err := client.ForeignNetShares(context.Background(), "2330", "20260130")
	require.NoError(t, err)
	require.NotNil(t, shares)
	assert.Equal(t, int64(3503000), *shares)

	shares, err = client.ForeignNetShares(context.Background(), "2317", "20260130")
	require.NoError(t, err)
	require.NotNil(t, shares)
	assert.Equal(t, int64(-1200000), *shares)
}

func TestForeignNetSharesNoMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(twt38uPayload))
	})

	shares, err := client.ForeignNetShares(context.Background(), "9999", "20260130")
	require.NoError(t, err)
	assert.Nil(t, shares)
}

func TestForeignNetSharesBadStat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat":"很抱歉，沒有符合條件的資料!","fields":[],"data":[]}`))
	})

	shares, err := client.ForeignNetShares(context.Background(), "2330", "20260130")
	require.NoError(t, err)
	assert.Nil(t, shares)
}

func TestForeignNetSharesReorderedColumns(t *testing.T) {
	// Columns are located by header label, so a reordered table still
	// resolves correctly.
	payload := `{"stat":"ok","fields":["買賣超股數","證券名稱","證券代號"],
		"data":[["3,503,000","台積電","2330"]]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	shares, err := client.ForeignNetShares(context.Background(), "2330", "20260130")
	require.NoError(t, err)
	require.NotNil(t, shares)
	assert.Equal(t, int64(3503000), *shares)
}

func TestForeignNetSharesMissingLabel(t *testing.T) {
	payload := `{"stat":"OK","fields":["排行","證券代號","證券名稱"],
		"data":[["1","2330","台積電"]]}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	shares, err := client.ForeignNetShares(context.Background(), "2330", "20260130")
	require.NoError(t, err)
	assert.Nil(t, shares)
}

func TestLatestTradingDays(t *testing.T) {
	// 2026-01-31 is a Saturday and the 30th a Friday; the probe must
	// walk over the weekend gap and the holiday without data.
	tradingDays := map[string]bool{
		"20260130": true,
		"20260129": true,
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if tradingDays[r.URL.Query().Get("date")] {
			w.Write([]byte(twt38uPayload))
			return
		}
		w.Write([]byte(`{"stat":"很抱歉，沒有符合條件的資料!","data":[]}`))
	})
	client.now = func() time.Time {
		return time.Date(2026, 2, 1, 10, 0, 0, 0, taipeiLocation)
	}

	pair, err := client.LatestTradingDays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20260130", pair.Latest)
	assert.Equal(t, "20260129", pair.Prev)
}

func TestLatestTradingDaysSkipsProbeFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "20260201":
			w.WriteHeader(http.StatusInternalServerError)
		case "20260130", "20260129":
			w.Write([]byte(twt38uPayload))
		default:
			w.Write([]byte(`{"stat":"很抱歉，沒有符合條件的資料!","data":[]}`))
		}
	})
	client.now = func() time.Time {
		return time.Date(2026, 2, 1, 10, 0, 0, 0, taipeiLocation)
	}

	pair, err := client.LatestTradingDays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "20260130", pair.Latest)
	assert.Equal(t, "20260129", pair.Prev)
}

func TestLatestTradingDaysExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stat":"很抱歉，沒有符合條件的資料!","data":[]}`))
	})
	client.now = func() time.Time {
		return time.Date(2026, 2, 1, 10, 0, 0, 0, taipeiLocation)
	}

	_, err := client.LatestTradingDays(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no trading day pair"))
}

func TestNameFromTitle(t *testing.T) {
	name := nameFromTitle("115年01月 2330 台積電 各日成交資訊", "2330")
	require.NotNil(t, name)
	assert.Equal(t, "台積電", *name)

	assert.Nil(t, nameFromTitle("", "2330"))
	assert.Nil(t, nameFromTitle("很抱歉，沒有符合條件的資料!", "2330"))
}
