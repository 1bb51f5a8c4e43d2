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
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxDownloadRetries is the number of times a failed HTTP download
// is retried.
const maxDownloadRetries = 5

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or a blob.
// If it is, it downloads the file and
// returns the path to the downloaded file.
// Otherwise, it returns the given path.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	// If the path starts with one of these prefixes, download the file and
	// return the location it was downloaded to.
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}

	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}

	return path, nil
}

// downloadFile creates a temporary directory and a file in it with the
// base name of the given URL path.
func downloadFile(urlPath string) (*os.File, error) {
	dir, err := ioutil.TempDir("", "solarstill")
	if err != nil {
		return nil, fmt.Errorf("stillutil: failed creating temporary download directory: %v", err)
	}
	name := path.Base(urlPath)
	if name == "/" || name == "." {
		name = "download"
	}
	w, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("stillutil: failed creating file for download: %v", err)
	}
	return w, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Failed requests are retried with
// exponential backoff.
func downloadHTTP(ctx context.Context, rawurl string, log logrus.FieldLogger) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("stillutil: parsing download URL: %v", err)
	}
	w, err := downloadFile(u.Path)
	if err != nil {
		return "", err
	}
	defer w.Close()

	op := func() error {
		req, err := http.NewRequest(http.MethodGet, rawurl, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req.WithContext(ctx))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("stillutil: downloading %s: %s", rawurl, resp.Status)
		}
		if err := w.Truncate(0); err != nil {
			return err
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			return err
		}
		_, err = io.Copy(w, resp.Body)
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxDownloadRetries), ctx)
	err = backoff.RetryNotify(op, b, func(err error, d time.Duration) {
		log.WithError(err).Warnf("download failed: retrying in %v", d)
	})
	if err != nil {
		return "", err
	}
	log.WithField("url", rawurl).Info("downloaded file")
	return w.Name(), nil
}

// bucketOpeners holds the blob storage providers that weather and
// constants files can be read from, keyed by URL scheme.
var bucketOpeners = map[string]func(context.Context, *url.URL) (*blob.Bucket, error){
	"file": fileBucket,
	"gs":   gsBucket,
	"s3":   s3Bucket,
}

// IsBlob returns whether the given path is a blob URL with a supported
// scheme: file://, gs://, or s3://.
func IsBlob(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	_, ok := bucketOpeners[u.Scheme]
	return ok && u.Host != ""
}

// OpenBucket opens the blob storage bucket named by the host of
// bucketURL, for example "s3://weather-data?region=eu-west-1". Any path
// in the URL is ignored. The "file" scheme opens a local directory
// relative to the working directory, which is mostly useful for testing.
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("solarstill: invalid bucket URL %q: %v", bucketURL, err)
	}
	open, ok := bucketOpeners[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("solarstill: bucket %q: unsupported storage scheme %q; use file://, gs://, or s3://",
			bucketURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("solarstill: bucket %q has no name", bucketURL)
	}
	b, err := open(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("solarstill: opening bucket %s://%s: %v", u.Scheme, u.Host, err)
	}
	return b, nil
}

func fileBucket(_ context.Context, u *url.URL) (*blob.Bucket, error) {
	info, err := os.Stat(u.Host)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", u.Host)
	}
	return fileblob.NewBucket(u.Host)
}

// gsBucket opens a Google Cloud Storage bucket using the application
// default credentials.
func gsBucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("no Google Cloud credentials; set GOOGLE_APPLICATION_CREDENTIALS: %v", err)
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, u.Host, c)
}

// s3Region returns the AWS region of an s3:// URL, taken from its
// "region" query parameter or else the AWS_REGION environment variable.
func s3Region(u *url.URL) (string, error) {
	if r := u.Query().Get("region"); r != "" {
		return r, nil
	}
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r, nil
	}
	return "", fmt.Errorf("unknown AWS region; add ?region=<region> to the URL or set AWS_REGION")
}

// s3Bucket opens an AWS S3 bucket with credentials from the
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.
func s3Bucket(ctx context.Context, u *url.URL) (*blob.Bucket, error) {
	region, err := s3Region(u)
	if err != nil {
		return nil, err
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, u.Host)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	url, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("stillutil: parsing blob path: %v", err)
	}
	bucketURL := url.Scheme + "://" + url.Host
	if url.RawQuery != "" {
		bucketURL += "?" + url.RawQuery
	}
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return "", err
	}
	r, err := bucket.NewReader(ctx, strings.TrimPrefix(url.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("stillutil: opening %s: %v", path, err)
	}
	defer r.Close()
	w, err := downloadFile(url.Path)
	if err != nil {
		return "", err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("stillutil: downloading %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	log.WithField("blob", path).Info("downloaded file")
	return w.Name(), nil
}
