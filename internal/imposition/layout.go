package imposition

// PaddedPageCount rounds a page count up to even. Imposition works on page pairs.
func PaddedPageCount(pageCount int) int {
	return pageCount + pageCount%2
}

// Layout holds the constants derived once per run.
type Layout struct {
	PageCount            int `json:"page_count" yaml:"page_count"`
	PaddedPageCount      int `json:"padded_page_count" yaml:"padded_page_count"`
	PagesPerSheet        int `json:"pages_per_sheet" yaml:"pages_per_sheet"`
	SheetsPerSignature   int `json:"sheets_per_signature" yaml:"sheets_per_signature"`
	MaxPagesPerSignature int `json:"max_pages_per_signature" yaml:"max_pages_per_signature"`
	MagicNumber          int `json:"magic_number" yaml:"magic_number"`
	SignatureCount       int `json:"signature_count" yaml:"signature_count"`
}

// NewLayout derives the layout constants and applies the validity gate: the
// padded source must fill at least one signature.
func NewLayout(pageCount, pagesPerSheet, sheetsPerSignature int) (Layout, error) {
	l := Layout{
		PageCount:            pageCount,
		PaddedPageCount:      PaddedPageCount(pageCount),
		PagesPerSheet:        pagesPerSheet,
		SheetsPerSignature:   sheetsPerSignature,
		MaxPagesPerSignature: pagesPerSheet * sheetsPerSignature,
	}
	l.MagicNumber = l.MaxPagesPerSignature + 1
	if l.MaxPagesPerSignature <= 0 {
		return l, &ShortfallError{Required: l.MaxPagesPerSignature, Available: l.PaddedPageCount}
	}
	l.SignatureCount = SignatureCount(l.PaddedPageCount, pagesPerSheet, sheetsPerSignature)
	if l.PaddedPageCount < l.MaxPagesPerSignature {
		return l, &ShortfallError{Required: l.MaxPagesPerSignature, Available: l.PaddedPageCount}
	}
	return l, nil
}

// SignatureCount is ceil((padded / pagesPerSheet) / sheetsPerSignature).
func SignatureCount(paddedPageCount, pagesPerSheet, sheetsPerSignature int) int {
	per := pagesPerSheet * sheetsPerSignature
	if per <= 0 {
		return 0
	}
	return (paddedPageCount + per - 1) / per
}

// SheetsPerSignatureOutput is the number of output pages each signature emits.
func (l Layout) SheetsPerSignatureOutput() int {
	return l.MaxPagesPerSignature / 2
}

// FirstPageOf returns the page offset of a 0-based signature.
func (l Layout) FirstPageOf(sigIdx int) int {
	return sigIdx * l.MaxPagesPerSignature
}

// PagePair returns the 1-based (left, right) source pages for a sheet
// position. Odd steps carry the high page on the left, even steps on the
// right, so successive sheets nest when folded. The result is not bounds
// checked against the source.
func PagePair(sheetPos, firstPageOfSig, magicNumber int) (left, right int) {
	step := sheetPos + 1
	if step%2 == 0 {
		right = magicNumber - step + firstPageOfSig
		left = magicNumber - right + 2*firstPageOfSig
		return left, right
	}
	left = magicNumber - step + firstPageOfSig
	right = magicNumber - left + 2*firstPageOfSig
	return left, right
}
