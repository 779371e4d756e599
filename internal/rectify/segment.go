package rectify

import "gocv.io/x/gocv"

// Segment converts img to luminance and marks every pixel at or below
// threshold as foreground (255). The boundary is inclusive: with the default
// threshold of 50 an intensity of exactly 50 is foreground and 51 is not, as
// with OpenCV's THRESH_BINARY_INV. The caller owns the returned mask.
func Segment(img gocv.Mat, threshold float64) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	mask := gocv.NewMat()
	gocv.Threshold(gray, &mask, float32(threshold), 255, gocv.ThresholdBinaryInv)
	return mask
}
