/*
Copyright © 2024 the SolarStill authors.
This file is part of SolarStill.

SolarStill is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SolarStill is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SolarStill.  If not, see <http://www.gnu.org/licenses/>.
*/

package stillutil

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helperLog(t *testing.T) logrus.FieldLogger {
	log := newLogger(ioutil.Discard)
	log.Level = logrus.DebugLevel
	return log.WithField("test", t.Name())
}

func TestMaybeDownloadLocal(t *testing.T) {
	k, err := maybeDownload(context.Background(), "/dev/null", helperLog(t))
	require.NoError(t, err)
	assert.Equal(t, "/dev/null", k)

	k, err = maybeDownload(context.Background(), "/blah/test.csv", helperLog(t))
	require.NoError(t, err)
	assert.Equal(t, "/blah/test.csv", k)
}

func TestMaybeDownloadHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tmy.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "weather")
	}))
	defer srv.Close()

	k, err := maybeDownload(context.Background(), srv.URL+"/tmy.csv", helperLog(t))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(k, "tmy.csv"), k)
	b, err := ioutil.ReadFile(k)
	require.NoError(t, err)
	assert.Equal(t, "weather", string(b))
	os.RemoveAll(filepath.Dir(k))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err = maybeDownload(ctx, srv.URL+"/missing.csv", helperLog(t))
	assert.Error(t, err)
}

func TestMaybeDownloadBlob(t *testing.T) {
	dir, err := ioutil.TempDir(".", "blob")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	dir = filepath.Base(dir)

	ctx := context.Background()
	bucket, err := OpenBucket(ctx, "file://"+dir)
	require.NoError(t, err)
	w, err := bucket.NewWriter(ctx, "tmy.csv", nil)
	require.NoError(t, err)
	_, err = fmt.Fprint(w, "blob weather")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.True(t, IsBlob("file://"+dir+"/tmy.csv"))
	k, err := maybeDownload(ctx, "file://"+dir+"/tmy.csv", helperLog(t))
	require.NoError(t, err)
	b, err := ioutil.ReadFile(k)
	require.NoError(t, err)
	assert.Equal(t, "blob weather", string(b))
	os.RemoveAll(filepath.Dir(k))

	_, err = maybeDownload(ctx, "file://"+dir+"/missing.csv", helperLog(t))
	assert.Error(t, err)

	_, err = OpenBucket(ctx, "ftp://bucket")
	assert.Error(t, err)
}

func TestOpenBucketErrors(t *testing.T) {
	ctx := context.Background()
	assert.False(t, IsBlob("ftp://bucket/tmy.csv"))
	assert.False(t, IsBlob("s3:///tmy.csv"))

	_, err := OpenBucket(ctx, "ftp://bucket")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported storage scheme "ftp"`)

	_, err = OpenBucket(ctx, "s3://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no name")

	_, err = OpenBucket(ctx, "file://no-such-weather-dir")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening bucket file://no-such-weather-dir")

	old, had := os.LookupEnv("AWS_REGION")
	os.Unsetenv("AWS_REGION")
	defer func() {
		if had {
			os.Setenv("AWS_REGION", old)
		}
	}()
	_, err = OpenBucket(ctx, "s3://weather-data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AWS region")
}

func TestS3Region(t *testing.T) {
	old, had := os.LookupEnv("AWS_REGION")
	defer func() {
		if had {
			os.Setenv("AWS_REGION", old)
		} else {
			os.Unsetenv("AWS_REGION")
		}
	}()
	os.Setenv("AWS_REGION", "us-west-2")

	u, err := url.Parse("s3://weather-data?region=eu-west-1")
	require.NoError(t, err)
	r, err := s3Region(u)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", r)

	u, err = url.Parse("s3://weather-data")
	require.NoError(t, err)
	r, err = s3Region(u)
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", r)

	os.Unsetenv("AWS_REGION")
	_, err = s3Region(u)
	assert.Error(t, err)
}
