package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sort"

	"slidebot/slidebot/utils/types"

	"github.com/go-pdf/fpdf"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

var ErrNoImages = errors.New("no images to assemble")

// fpdf image types for formats it can embed as-is
var embeddable = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

// Assembler composites page images into a single PDF.
type Assembler struct{}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// SortImages orders images by ascending page index. Equal indices keep their
// input order.
func SortImages(images []types.Image) []types.Image {
	sorted := append([]types.Image(nil), images...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

// Assemble writes one page per image to outPath. Each page is exactly the
// image's pixel size, one pixel per point, with the image filling it.
func (a *Assembler) Assemble(images []types.Image, outPath string) ([]types.PageInfo, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)

	var pages []types.PageInfo
	for _, img := range SortImages(images) {
		w, h, err := a.addPage(doc, img)
		if err != nil {
			return nil, err
		}
		pages = append(pages, types.PageInfo{Index: img.Index, Width: w, Height: h})
	}

	if err := doc.OutputFileAndClose(outPath); err != nil {
		return nil, fmt.Errorf("write pdf %s: %w", outPath, err)
	}
	return pages, nil
}

func (a *Assembler) addPage(doc *fpdf.Fpdf, img types.Image) (float64, float64, error) {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return 0, 0, fmt.Errorf("read page %d: %w", img.Index, err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode page %d (%s): %w", img.Index, img.Path, err)
	}

	var src io.Reader = bytes.NewReader(data)
	imageType, ok := embeddable[format]
	if !ok {
		// webp and friends are transcoded to JPEG
		src, err = transcode(data)
		if err != nil {
			return 0, 0, fmt.Errorf("transcode page %d: %w", img.Index, err)
		}
		imageType = "JPG"
	}

	w, h := float64(cfg.Width), float64(cfg.Height)
	doc.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

	opts := fpdf.ImageOptions{ImageType: imageType}
	name := fmt.Sprintf("page-%d-%s", img.Index, img.Path)
	doc.RegisterImageOptionsReader(name, opts, src)
	doc.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
	if err := doc.Error(); err != nil {
		return 0, 0, fmt.Errorf("draw page %d: %w", img.Index, err)
	}

	pw, ph, _ := doc.PageSize(doc.PageNo())
	return pw, ph, nil
}

func transcode(data []byte) (io.Reader, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, decoded, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return &buf, nil
}
