package labels

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"
)

func renderPackageLabelPDF(label PackageLabelData, printedAt time.Time) ([]byte, error) {
	return renderPackageLabelsPDF([]PackageLabelData{label}, printedAt)
}

func renderPackageLabelsPDF(labels []PackageLabelData, printedAt time.Time) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("L", "mm", "A5", "")
	pdf.SetTitle("Package Labels", false)

	for i, label := range labels {
		barcodeValue := strings.TrimSpace(label.Barcode)
		if barcodeValue == "" {
			barcodeValue = label.PackageID
		}
		barcodePNG, err := renderCode128PNG(barcodeValue, 1000, 220)
		if err != nil {
			return nil, err
		}

		pdf.AddPage()

		documentType := strings.TrimSpace(label.DocumentType)
		if documentType == "" {
			documentType = "Unknown"
		}
		createdText := "N/A"
		if !label.CreatedAt.IsZero() {
			createdText = label.CreatedAt.Format("02/01/2006")
		}

		pdf.SetFont("Helvetica", "B", 30)
		pdf.CellFormat(0, 16, "PACKAGE "+label.PackageID, "", 1, "C", false, 0, "")

		pdf.SetFont("Helvetica", "", 13)
		pdf.CellFormat(0, 7, "Document: "+documentType+" "+label.DocumentID, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 7, "Created: "+createdText, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 7, "Printed: "+printedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")

		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := fmt.Sprintf("package-barcode-%s-%d", label.PackageID, i)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
		pageW, _ := pdf.GetPageSize()
		imgW := 150.0
		imgH := 36.0
		x := (pageW - imgW) / 2
		y := 62.0
		pdf.ImageOptions(imageName, x, y, imgW, imgH, false, opt, 0, "")

		pdf.SetY(y + imgH + 4)
		pdf.SetFont("Helvetica", "B", 18)
		pdf.CellFormat(0, 10, barcodeValue, "", 1, "C", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var barcodePNG bytes.Buffer
	if err := png.Encode(&barcodePNG, normalized); err != nil {
		return nil, err
	}
	return barcodePNG.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
