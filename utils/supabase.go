package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	storage "github.com/supabase-community/storage-go"
)

const imageBucket = "images"

// UploadImageToSupabase stores a thumbnail/banner image under
// images/<prefix>/<fileID>.<ext> and returns its public URL plus the object
// key needed to delete it later.
func UploadImageToSupabase(fileHeader *multipart.FileHeader, prefix, fileID string) (url string, key string, err error) {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectPath := fmt.Sprintf("%s/%s%s", prefix, fileID, ext)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", "", err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	if _, err := storageClient.UploadFile(imageBucket, objectPath, &buf, options); err != nil {
		return "", "", err
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", supabaseURL, imageBucket, objectPath)
	return publicURL, objectPath, nil
}

// DeleteImageFromSupabase removes a previously uploaded object by key.
func DeleteImageFromSupabase(key string) error {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	_, err := storageClient.RemoveFile(imageBucket, []string{key})
	return err
}
