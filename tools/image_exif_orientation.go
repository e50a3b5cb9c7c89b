package tools

import (
	"image"
	"io"

	"cloud.google.com/go/logging"
	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// TryFindExifOrientation returns the EXIF orientation of the image in file,
// or 1 when there is none. The reader is rewound before returning.
func TryFindExifOrientation(logger Logger, file io.ReadSeeker) (int, error) {
	x, exifErr := exif.Decode(file)

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		logger.Log(logging.Entry{
			Severity: logging.Error,
			Payload:  "Error resetting file pointer",
			Labels:   map[string]string{"error": err.Error()},
		})
		return 1, err
	}

	if exifErr != nil {
		// Most PNG and WebP uploads carry no EXIF block at all.
		logger.Log(logging.Entry{
			Severity: logging.Debug,
			Payload:  "No EXIF data, applying default image orientation",
			Labels:   map[string]string{"error": exifErr.Error()},
		})
		return 1, nil
	}

	orientTag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1, nil
	}

	orientation, err := orientTag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		logger.Log(logging.Entry{
			Severity: logging.Warning,
			Payload:  "Unreadable orientation tag, applying default image orientation",
		})
		return 1, nil
	}

	return orientation, nil
}

// CorrectImageOrientation rotates or flips img so that it displays upright.
func CorrectImageOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
