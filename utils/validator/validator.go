package validator

import (
	"io"
	"net/http"
)

// allowedImageMimeTypes 允许上传的图片类型
// 缩略图按源格式重编码，所以只收标准库和 x/image 能编码的格式
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
}

// IsImage Verify if the file content is an allowed image type.
func IsImage(file io.ReadSeeker) (bool, error) {
	mimeType, err := SniffContentType(file)
	if err != nil {
		return false, err
	}
	return allowedImageMimeTypes[mimeType], nil
}

// SniffContentType 探测流的 MIME 类型并把流复位
func SniffContentType(stream io.ReadSeeker) (string, error) {
	buffer := make([]byte, 512)

	n, err := stream.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	contentType := http.DetectContentType(buffer[:n])

	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return contentType, nil
}
