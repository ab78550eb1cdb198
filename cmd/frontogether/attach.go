package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/petasbytes/frontogether/internal/conversation"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// loadPNG reads path and returns it as a base64 PNG attachment.
func loadPNG(path string) (*conversation.Attachment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		return nil, fmt.Errorf("attachment %s is not a PNG image", path)
	}
	return conversation.PNG(base64.StdEncoding.EncodeToString(b)), nil
}
