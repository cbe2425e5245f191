package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/schoolcrawler/internal/crawler"
	"sjsage522/schoolcrawler/logger"
	"sjsage522/schoolcrawler/services/artifact"
	"sjsage522/schoolcrawler/services/worker"
)

// listingPage0 carries the pager and the first two schools. The Tulane
// cell mirrors the catalog's real layout: image, name link, labeled
// fields and degree names in the cell text.
const listingPage0 = `<!DOCTYPE html>
<html>
<body>
<table>
<tbody>
<tr>
	<td>
		<img src="/sites/default/files/tulane.jpg" />
		<h3><a href="/node/386">Tulane University Freeman School of Business</a></h3>
		<p>國家: 美國 城市: 紐奧良 交換名額: 2</p>
		<p>Bachelor, Master</p>
	</td>
	<td>
		<h3><a href="/node/42">Kyoto University of Commerce</a></h3>
		<p>國家: 日本 城市: 京都 交換名額: 3</p>
		<p>Master, Ph.D</p>
	</td>
</tr>
</tbody>
</table>
<div class="pager">
	<a href="/school-list?page=1">2</a>
	<a href="/school-list?page=1&op=last">last</a>
</div>
</body>
</html>`

// listingPage1 repeats Tulane (a duplicate to reject) and adds a school
// whose detail page is broken.
const listingPage1 = `<!DOCTYPE html>
<html>
<body>
<table>
<tbody>
<tr>
	<td>
		<h3><a href="/node/386">Tulane University Freeman School of Business</a></h3>
		<p>國家: 美國 城市: 紐奧良 交換名額: 2</p>
	</td>
	<td>
		<h3><a href="/node/99">London School of Partnerships</a></h3>
		<p>國家: 英國 城市: 倫敦</p>
	</td>
</tr>
</tbody>
</table>
<div class="pager">
	<a href="/school-list?page=0">1</a>
</div>
</body>
</html>`

const tulaneDetail = `<!DOCTYPE html>
<html>
<body>
<p>  A business school on the Gulf Coast.  </p>
<a href="/school-list">back</a>
<a href="https://freeman.example.edu">Official site</a>
<div>Address: 7 McAlister Dr, New Orleans</div>
<div>位置: 市中心</div>
</body>
</html>`

const kyotoDetail = `<!DOCTYPE html>
<html>
<body>
<p>A commerce school in the old capital.</p>
<a href="https://kyoto.example.ac.jp">site</a>
</body>
</html>`

// memStore keeps upserted rows keyed by detail page URL
type memStore struct {
	schemaCalls int
	rows        map[string]crawler.SchoolRecord
	order       []string
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]crawler.SchoolRecord)}
}

func (m *memStore) EnsureSchema(ctx context.Context) error {
	m.schemaCalls++
	return nil
}

func (m *memStore) Upsert(ctx context.Context, record crawler.SchoolRecord) error {
	if _, exists := m.rows[record.NCCUPageURL]; !exists {
		m.order = append(m.order, record.NCCUPageURL)
	}
	m.rows[record.NCCUPageURL] = record
	return nil
}

func (m *memStore) Close() error {
	return nil
}

// TestCrawlPipeline runs the whole pipeline against a mock catalog site:
// two listing pages, a duplicate entry, one broken detail page.
func TestCrawlPipeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch {
		case r.URL.Path == "/school-list" && r.URL.Query().Get("page") == "1":
			fmt.Fprint(w, listingPage1)
		case r.URL.Path == "/school-list":
			fmt.Fprint(w, listingPage0)
		case r.URL.Path == "/node/386":
			fmt.Fprint(w, tulaneDetail)
		case r.URL.Path == "/node/42":
			fmt.Fprint(w, kyotoDetail)
		case r.URL.Path == "/node/99":
			http.Error(w, "internal error", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	log := logger.Nop()
	source := crawler.NewHTTPSource(nil, 0)
	defer source.Close()

	c, err := crawler.NewSchoolCrawler(crawler.Config{
		BaseURL:  server.URL,
		ListPath: "/school-list",
	}, source, log)
	require.NoError(t, err)

	store := newMemStore()
	artifactPath := filepath.Join(t.TempDir(), "schools_data.json")

	w := worker.New(c, store, artifact.NewWriter(artifactPath), nil, 0, log)
	summary, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 0, summary.PageErrors)
	assert.Equal(t, 3, summary.Schools)
	assert.Equal(t, 1, summary.Duplicates, "the repeated Tulane entry should be rejected")
	assert.Equal(t, 1, summary.DetailErrors, "the broken detail page should be absorbed")
	assert.Equal(t, 3, summary.Persisted)
	assert.Equal(t, 0, summary.Failed)

	assert.Equal(t, 1, store.schemaCalls)
	require.Len(t, store.rows, 3)

	tulane := store.rows[server.URL+"/node/386"]
	assert.Equal(t, "Tulane University Freeman School of Business", tulane.Name)
	assert.Equal(t, "美國", tulane.Country)
	assert.Equal(t, "紐奧良", tulane.City)
	require.NotNil(t, tulane.ExchangeQuota)
	assert.Equal(t, 2, *tulane.ExchangeQuota)
	assert.Equal(t, []crawler.DegreeType{crawler.DegreeBachelor, crawler.DegreeMaster}, tulane.DegreeTypes)
	assert.Equal(t, server.URL+"/sites/default/files/tulane.jpg", tulane.ImageURL)
	assert.Equal(t, "A business school on the Gulf Coast.", tulane.Description)
	assert.Equal(t, "https://freeman.example.edu", tulane.OfficialWebsite)
	assert.Equal(t, "Address: 7 McAlister Dr, New Orleans 位置: 市中心", tulane.LocationInfo)

	kyoto := store.rows[server.URL+"/node/42"]
	assert.Equal(t, []crawler.DegreeType{crawler.DegreeMaster, crawler.DegreePhD}, kyoto.DegreeTypes)
	assert.Equal(t, "A commerce school in the old capital.", kyoto.Description)
	assert.Equal(t, "https://kyoto.example.ac.jp", kyoto.OfficialWebsite)

	london := store.rows[server.URL+"/node/99"]
	assert.Equal(t, "London School of Partnerships", london.Name)
	assert.Equal(t, "英國", london.Country)
	assert.Empty(t, london.Description, "the record with a broken detail page should keep only listing fields")

	raw, err := os.ReadFile(artifactPath)
	require.NoError(t, err)
	var fromArtifact []crawler.SchoolRecord
	require.NoError(t, json.Unmarshal(raw, &fromArtifact))
	require.Len(t, fromArtifact, 3, "the artifact should hold every collected record")
	assert.Equal(t, "Tulane University Freeman School of Business", fromArtifact[0].Name)
	assert.Contains(t, string(raw), "美國", "the artifact should keep CJK text readable")
}

// TestCrawlPipelineListingPageFailure drops one listing page and expects
// the run to report it and carry on.
func TestCrawlPipelineListingPageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch {
		case r.URL.Path == "/school-list" && r.URL.Query().Get("page") == "1":
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
		case r.URL.Path == "/school-list":
			fmt.Fprint(w, listingPage0)
		case r.URL.Path == "/node/386":
			fmt.Fprint(w, tulaneDetail)
		case r.URL.Path == "/node/42":
			fmt.Fprint(w, kyotoDetail)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	log := logger.Nop()
	source := crawler.NewHTTPSource(nil, 0)
	defer source.Close()

	c, err := crawler.NewSchoolCrawler(crawler.Config{
		BaseURL:  server.URL,
		ListPath: "/school-list",
	}, source, log)
	require.NoError(t, err)

	store := newMemStore()
	w := worker.New(c, store, artifact.NewWriter(filepath.Join(t.TempDir(), "schools_data.json")), nil, 0, log)

	summary, err := w.Run(context.Background())
	require.NoError(t, err, "a failed listing page should not abort the run")

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 1, summary.PageErrors)
	assert.Equal(t, 2, summary.Schools, "the failed page should contribute zero schools")
	assert.Equal(t, 2, summary.Persisted)
}
