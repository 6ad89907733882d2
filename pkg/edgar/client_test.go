package edgar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edgaropts "github.com/kart-io/proxyscope/pkg/options/edgar"
)

func testOptions(srv *httptest.Server) *edgaropts.Options {
	o := edgaropts.NewOptions()
	o.SubmissionsBaseURL = srv.URL
	o.ArchivesBaseURL = srv.URL
	o.UserAgent = "proxyscope-test test@example.com"
	o.RequestsPerSecond = 10
	o.Burst = 10
	o.MaxRetries = 2
	return o
}

func TestParseCIK(t *testing.T) {
	tests := []struct {
		name    string
		cik     string
		want    uint64
		wantErr bool
	}{
		{name: "plain", cik: "320193", want: 320193},
		{name: "zero padded", cik: "0000320193", want: 320193},
		{name: "with spaces", cik: " 320193 ", want: 320193},
		{name: "empty", cik: "", wantErr: true},
		{name: "too long", cik: "00003201934", wantErr: true},
		{name: "non numeric", cik: "AAPL", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCIK(tt.cik)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPadCIK(t *testing.T) {
	assert.Equal(t, "0000320193", PadCIK(320193))
	assert.Equal(t, "0000000001", PadCIK(1))
}

func TestIsProxyForm(t *testing.T) {
	tests := []struct {
		form string
		want bool
	}{
		{"DEF 14A", true},
		{"DEF14A", true},
		{"def 14a", true},
		{"DEFR14A", true},
		{"DEFR 14A", true},
		{"DEFA14A", false}, // 补充材料不是正式委托书
		{"PRE 14A", false},
		{"10-K", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsProxyForm(tt.form), "form %q", tt.form)
	}
}

func TestSubmissions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submissions/CIK0000320193.json", r.URL.Path)
		assert.Equal(t, "proxyscope-test test@example.com", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{
			"cik": "320193",
			"name": "Apple Inc.",
			"tickers": ["AAPL"],
			"exchanges": ["Nasdaq"],
			"filings": {
				"recent": {
					"accessionNumber": ["0000320193-24-000005", "0000320193-24-000004"],
					"filingDate": ["2024-01-10", "2024-01-05"],
					"reportDate": ["2024-02-28", ""],
					"form": ["DEF 14A", "10-K"],
					"primaryDocument": ["proxy.htm", "aapl-10k.htm"]
				},
				"files": []
			}
		}`)
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	subs, err := client.Submissions(context.Background(), "320193")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", subs.Name)
	assert.Equal(t, []string{"AAPL"}, subs.Tickers)
	require.Len(t, subs.Filings.Recent.AccessionNumber, 2)
	assert.Equal(t, "DEF 14A", subs.Filings.Recent.Form[0])
}

func TestProxyFilings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/submissions/CIK0000320193.json":
			fmt.Fprint(w, `{
				"cik": "320193",
				"name": "Apple Inc.",
				"filings": {
					"recent": {
						"accessionNumber": ["acc-24-def", "acc-24-10k", "acc-23-def"],
						"filingDate": ["2024-01-10", "2024-11-01", "2023-01-12"],
						"reportDate": ["", "", ""],
						"form": ["DEF 14A", "10-K", "DEF 14A"],
						"primaryDocument": ["proxy24.htm", "tenk.htm", "proxy23.htm"]
					},
					"files": [
						{"name": "CIK0000320193-submissions-001.json", "filingCount": 2, "filingFrom": "2018-01-01", "filingTo": "2019-12-31"}
					]
				}
			}`)
		case "/submissions/CIK0000320193-submissions-001.json":
			fmt.Fprint(w, `{
				"accessionNumber": ["acc-19-defr"],
				"filingDate": ["2019-03-02"],
				"reportDate": [""],
				"form": ["DEFR14A"],
				"primaryDocument": [""]
			}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	filings, err := client.ProxyFilings(context.Background(), "320193", 2024)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "acc-24-def", filings[0].AccessionNumber)
	assert.Equal(t, "proxy24.htm", filings[0].PrimaryDocument)

	// 目标年份落在附加索引文件的区间内时才会翻页。
	filings, err = client.ProxyFilings(context.Background(), "320193", 2019)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, "acc-19-defr", filings[0].AccessionNumber)
	assert.Equal(t, DefaultPrimaryDocument, filings[0].PrimaryDocument)
}

func TestProxyFilingsSkipsPagesOutsideYear(t *testing.T) {
	var pageFetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/submissions/CIK0000001750.json" {
			fmt.Fprint(w, `{
				"cik": "1750",
				"filings": {
					"recent": {
						"accessionNumber": [],
						"filingDate": [],
						"reportDate": [],
						"form": [],
						"primaryDocument": []
					},
					"files": [
						{"name": "old.json", "filingCount": 500, "filingFrom": "2001-01-01", "filingTo": "2010-12-31"}
					]
				}
			}`)
			return
		}
		atomic.AddInt64(&pageFetches, 1)
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	filings, err := client.ProxyFilings(context.Background(), "1750", 2024)
	require.NoError(t, err)
	assert.Empty(t, filings)
	assert.Zero(t, atomic.LoadInt64(&pageFetches))
}

func TestDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Archives/edgar/data/320193/000032019324000005/proxy.htm", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html><body>proxy statement</body></html>")
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	body, err := client.Document(context.Background(), "0000320193", "0000320193-24-000005", "proxy.htm")
	require.NoError(t, err)
	assert.Contains(t, string(body), "proxy statement")
}

func TestDocumentDefaultsPrimaryDoc(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Archives/edgar/data/1750/000117502400001/primary_doc.htm", r.URL.Path)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	_, err = client.Document(context.Background(), "1750", "0001175024-00001", "")
	require.NoError(t, err)
}

func TestDocumentNotFoundIsError(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, "no such document", http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	_, err = client.Document(context.Background(), "1750", "acc", "missing.htm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	// 4xx 不重试。
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) == 1 {
			http.Error(w, "throttled", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer srv.Close()

	client, err := New(testOptions(srv))
	require.NoError(t, err)

	body, err := client.Document(context.Background(), "1750", "acc", "doc.htm")
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestGetExhaustsRetries(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	opts := testOptions(srv)
	opts.MaxRetries = 1
	client, err := New(opts)
	require.NoError(t, err)

	_, err = client.Document(context.Background(), "1750", "acc", "doc.htm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestDocumentURL(t *testing.T) {
	client, err := New(nil)
	require.NoError(t, err)

	url := client.DocumentURL("0000320193", "0000320193-24-000005", "proxy.htm")
	assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/320193/000032019324000005/proxy.htm", url)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	opts := edgaropts.NewOptions()
	opts.UserAgent = "  "
	_, err := New(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user-agent")
}
