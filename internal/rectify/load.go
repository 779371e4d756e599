package rectify

import (
	"errors"
	"os"

	"gocv.io/x/gocv"
)

var errUndecodable = errors.New("not a decodable image")

// Load reads a color image from path. On error the returned Mat is the zero
// value and must not be used or closed.
func Load(path string) (gocv.Mat, error) {
	if _, err := os.Stat(path); err != nil {
		return gocv.Mat{}, &LoadError{Source: path, Err: err}
	}
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, &LoadError{Source: path, Err: errUndecodable}
	}
	return img, nil
}

// Decode reads a color image from an encoded buffer (PNG, JPEG, ...).
func Decode(buf []byte) (gocv.Mat, error) {
	if len(buf) == 0 {
		return gocv.Mat{}, &LoadError{Source: "buffer", Err: errors.New("empty buffer")}
	}
	img, err := gocv.IMDecode(buf, gocv.IMReadColor)
	if err != nil {
		return gocv.Mat{}, &LoadError{Source: "buffer", Err: err}
	}
	if img.Empty() {
		img.Close()
		return gocv.Mat{}, &LoadError{Source: "buffer", Err: errUndecodable}
	}
	return img, nil
}
