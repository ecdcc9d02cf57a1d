package imposition

// SideAction says what happens to one half of an output page.
type SideAction string

const (
	// SidePlace puts the source page on the output page.
	SidePlace SideAction = "place"
	// SidePadding leaves the half blank: the page number is the synthetic
	// page that makes an odd source even.
	SidePadding SideAction = "padding"
	// SideOutOfRange skips a page number past the padded source.
	SideOutOfRange SideAction = "out_of_range"
	// SideExhausted leaves the half blank because the source ran out.
	SideExhausted SideAction = "exhausted"
)

// Sheet is the plan for one output page of a signature.
type Sheet struct {
	Signature int        `json:"signature" yaml:"signature"` // 0-based
	Position  int        `json:"position" yaml:"position"`   // 0-based within the signature
	Cursor    int        `json:"cursor" yaml:"cursor"`       // source cursor when the sheet was planned
	Exhausted bool       `json:"exhausted" yaml:"exhausted"`
	Left      int        `json:"left" yaml:"left"`
	Right     int        `json:"right" yaml:"right"`
	LeftSide  SideAction `json:"left_side" yaml:"left_side"`
	RightSide SideAction `json:"right_side" yaml:"right_side"`
}

// Placements counts the source pages the sheet puts on paper.
func (s Sheet) Placements() int {
	n := 0
	if s.LeftSide == SidePlace {
		n++
	}
	if s.RightSide == SidePlace {
		n++
	}
	return n
}

// Signature is the plan for one signature.
type Signature struct {
	Index     int     `json:"index" yaml:"index"`
	FirstPage int     `json:"first_page" yaml:"first_page"`
	Sheets    []Sheet `json:"sheets" yaml:"sheets"`
}

// Plan is the complete page mapping of a run.
type Plan struct {
	Layout     Layout      `json:"layout" yaml:"layout"`
	Signatures []Signature `json:"signatures" yaml:"signatures"`

	// Unplaced lists real source pages no sheet puts on paper. Exhaustion is
	// sticky, so a last signature that starts near the end of the source can
	// skip pages: 18 pages at 4 per sheet and 2 sheets per signature never
	// place page 18.
	Unplaced []int `json:"unplaced,omitempty" yaml:"unplaced,omitempty"`
}

// planSheet decides one sheet from the cursor value left by the previous
// sheet and returns the cursor for the next one. Once the cursor passes the
// padded page count every later sheet is blank.
func planSheet(l Layout, sigIdx, sheetPos, cursor int) (Sheet, int) {
	s := Sheet{Signature: sigIdx, Position: sheetPos, Cursor: cursor}
	if cursor > l.PaddedPageCount {
		s.Exhausted = true
		s.LeftSide, s.RightSide = SideExhausted, SideExhausted
		return s, cursor
	}

	s.Left, s.Right = PagePair(sheetPos, l.FirstPageOf(sigIdx), l.MagicNumber)

	s.RightSide = SideOutOfRange
	if s.Right <= l.PaddedPageCount {
		s.RightSide = SidePlace
	}

	s.LeftSide = SideOutOfRange
	if s.Left <= l.PaddedPageCount {
		s.LeftSide = SidePlace
		if s.Left > l.PageCount {
			s.LeftSide = SidePadding
		}
	}

	return s, cursor + 2
}

// BuildPlan folds planSheet over every signature and sheet in order.
func BuildPlan(l Layout) Plan {
	p := Plan{Layout: l, Signatures: make([]Signature, 0, l.SignatureCount)}
	cursor := 1
	for sigIdx := 0; sigIdx < l.SignatureCount; sigIdx++ {
		sig := Signature{
			Index:     sigIdx,
			FirstPage: l.FirstPageOf(sigIdx),
			Sheets:    make([]Sheet, 0, l.SheetsPerSignatureOutput()),
		}
		for pos := 0; pos < l.SheetsPerSignatureOutput(); pos++ {
			var sheet Sheet
			sheet, cursor = planSheet(l, sigIdx, pos, cursor)
			sig.Sheets = append(sig.Sheets, sheet)
		}
		p.Signatures = append(p.Signatures, sig)
	}
	p.Unplaced = unplacedPages(l.PageCount, p.Signatures)
	return p
}

func unplacedPages(pageCount int, sigs []Signature) []int {
	placed := make([]bool, pageCount+1)
	for _, sig := range sigs {
		for _, s := range sig.Sheets {
			if s.RightSide == SidePlace && s.Right <= pageCount {
				placed[s.Right] = true
			}
			if s.LeftSide == SidePlace && s.Left <= pageCount {
				placed[s.Left] = true
			}
		}
	}
	var missing []int
	for n := 1; n <= pageCount; n++ {
		if !placed[n] {
			missing = append(missing, n)
		}
	}
	return missing
}
