package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".heic": true,
}

var leadingIndex = regexp.MustCompile(`(?i)^(img|dsc|photo)?[-_]?[0-9]{1,4}[-_. ]+`)

// DeriveTitleFromFilename turns "01_minji-pob.jpg" into "minji pob".
func DeriveTitleFromFilename(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	base = leadingIndex.ReplaceAllString(base, "")
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return base
	}
	return strings.Join(fields, " ")
}

func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ValidateImageFile checks the file exists and its header sniffs as an image.
func ValidateImageFile(filePath string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("not a file: %s", filePath)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := f.Read(head)
	if !filetype.IsImage(head[:n]) {
		return fmt.Errorf("file is not an image: %s", filePath)
	}
	return nil
}

func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
