package boards

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wwrFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>We Work Remotely</title>
    <item>
      <title>GlobalTech: Remote DevOps Engineer</title>
      <region>Anywhere in the World</region>
      <category>DevOps and Sysadmin</category>
      <skills>AWS, Terraform</skills>
      <description>&lt;p&gt;Terraform and &lt;strong&gt;AWS&lt;/strong&gt;, 3+ years.&lt;/p&gt;&lt;p&gt;Pay: $100,000 - $130,000&lt;/p&gt;</description>
      <pubDate>Tue, 06 Oct 2026 12:00:00 +0000</pubDate>
      <guid>https://weworkremotely.com/remote-jobs/globaltech-remote-devops-engineer</guid>
      <link>https://weworkremotely.com/remote-jobs/globaltech-remote-devops-engineer</link>
    </item>
    <item>
      <title>Standalone title</title>
      <link>https://weworkremotely.com/remote-jobs/standalone</link>
    </item>
    <item>
      <title></title>
    </item>
  </channel>
</rss>`

func TestWeWorkRemotelySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(wwrFeed))
	}))
	defer srv.Close()

	board := NewWeWorkRemotely(testClient(), nil, 0)
	board.URL = srv.URL

	jobs, err := board.Search(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, jobs.Len())

	job := jobs.Items[0]
	assert.True(t, strings.HasPrefix(job.ID, "weworkremotely_"))
	assert.Len(t, job.ID, len("weworkremotely_")+12)
	assert.Equal(t, PlatformWeWorkRemotely, job.Platform)
	assert.Equal(t, "Remote DevOps Engineer", job.Title)
	assert.Equal(t, "GlobalTech", job.Company)
	assert.Equal(t, "Terraform and AWS, 3+ years. Pay: $100,000 - $130,000", job.Description)
	assert.Equal(t, 100000, job.SalaryMin)
	assert.Equal(t, 130000, job.SalaryMax)
	assert.Equal(t, "Anywhere in the World", job.Location)
	assert.Equal(t, []string{"AWS", "Terraform", "DevOps and Sysadmin"}, job.Tags)
	assert.Equal(t, "2026-10-06", job.PostedAt)

	other := jobs.Items[1]
	assert.Equal(t, "Standalone title", other.Title)
	assert.Empty(t, other.Company)
	assert.Equal(t, "Anywhere", other.Location)
	assert.NotEqual(t, job.ID, other.ID)
}

func TestWeWorkRemotelyBadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not xml"))
	}))
	defer srv.Close()

	board := NewWeWorkRemotely(testClient(), nil, 0)
	board.URL = srv.URL

	_, err := board.Search(context.Background())
	require.Error(t, err)
}
