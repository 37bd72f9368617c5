package conjugation

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	datasetRepoOwner = "flashidioma"
	datasetRepoName  = "conjugation-data"
)

// EnsureDataset checks whether a dataset file exists at path. If not, it
// discovers the latest published dataset release on GitHub, downloads the
// JSON asset, and writes it to path.
func EnsureDataset(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	fmt.Printf("Dataset not found at %s. Attempting auto-download...\n", path)

	downloadURL, err := latestDatasetAssetURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to find latest dataset release: %w", err)
	}

	fmt.Printf("Downloading from %s...\n", downloadURL)
	return downloadDataset(ctx, downloadURL, path)
}

func latestDatasetAssetURL(ctx context.Context) (string, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", datasetRepoOwner, datasetRepoName)
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return "", err
	}
	// GitHub API requires a User-Agent
	req.Header.Set("User-Agent", "flashidioma-cli")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var release struct {
		Assets []struct {
			Name               string `json:"name"`
			BrowserDownloadURL string `json:"browser_download_url"`
		} `json:"assets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}

	for _, asset := range release.Assets {
		if strings.HasSuffix(asset.Name, ".json") ||
			strings.HasSuffix(asset.Name, ".json.gz") ||
			strings.HasSuffix(asset.Name, ".json.tgz") {
			return asset.BrowserDownloadURL, nil
		}
	}

	return "", fmt.Errorf("no suitable dataset asset found in latest release")
}

func downloadDataset(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	if strings.HasSuffix(url, ".json") {
		return writeFileFrom(resp.Body, destPath)
	}

	gzReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	if strings.HasSuffix(url, ".json.gz") {
		return writeFileFrom(gzReader, destPath)
	}

	// .tgz: find the JSON entry inside the tar stream
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag == tar.TypeReg && strings.HasSuffix(header.Name, ".json") {
			return writeFileFrom(tarReader, destPath)
		}
	}
	return fmt.Errorf("no json file found in downloaded archive")
}

func writeFileFrom(r io.Reader, destPath string) error {
	outFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()
	if _, err := io.Copy(outFile, r); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
