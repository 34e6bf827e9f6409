package updates

import "github.com/hytalecompat/gameserver/internal/asset"

// UpdateTagPatterns (id 84): int-keyed, inline single top-level variable
// field. Each entry is a TagPattern operand tree — the family's only
// recursive shape: a node is either a literal tag name or a boolean
// combinator (AND/OR/NOT) over child nodes, each child addressed through
// its parent node's offset table with offsets measured from that parent
// node's own variable-block start (the recursive-entries rule applies at
// every level of the tree, not just the top).
const (
	UpdateTagPatternsID                 = 84
	UpdateTagPatternsIsCompressed       = false
	UpdateTagPatternsFixedBlockSize     = 0
	UpdateTagPatternsVariableFieldCount = 1
	UpdateTagPatternsMaxSize            = 1 << 16
)

// TagPatternOp discriminates a TagPattern node's kind.
type TagPatternOp uint8

const (
	TagPatternLiteral TagPatternOp = iota
	TagPatternAnd
	TagPatternOr
	TagPatternNot
)

// TagPattern is a recursive boolean expression over tag names. Literal
// nodes carry Name; combinator nodes carry Children (Not uses exactly one).
type TagPattern struct {
	Op       TagPatternOp
	Name     string
	Children []TagPattern
}

// writeTagPattern serializes one node: a 1-byte op tag, then either a
// varstring (literal) or a varint child count followed by each child's own
// offset-addressed sub-block (combinator). Each child's bytes are written
// into a nested offset table exactly like an entry-local tail field, so
// sibling children can be read independently without walking the whole
// subtree linearly.
func writeTagPattern(w *asset.Writer, p TagPattern) {
	w.Uint8(uint8(p.Op))
	if p.Op == TagPatternLiteral {
		w.Varstring(p.Name)
		return
	}
	w.Varint(uint32(len(p.Children)))
	ot := w.BeginOffsetTable(len(p.Children))
	for i, child := range p.Children {
		writeTagPattern(w, child)
		w.SetPresent(ot, i)
	}
}

func readTagPattern(r *asset.Reader) (TagPattern, error) {
	var p TagPattern
	op, err := r.Uint8()
	if err != nil {
		return p, err
	}
	p.Op = TagPatternOp(op)
	if p.Op == TagPatternLiteral {
		p.Name, err = r.Varstring()
		return p, err
	}
	n, err := r.Varint()
	if err != nil {
		return p, err
	}
	slots := make([]int32, n)
	for i := range slots {
		if slots[i], err = r.Int32(); err != nil {
			return p, err
		}
	}
	varStart := r.Off()
	p.Children = make([]TagPattern, 0, n)
	for _, slot := range slots {
		if slot < 0 {
			p.Children = append(p.Children, TagPattern{})
			continue
		}
		r.Seek(varStart + int(slot))
		child, err := readTagPattern(r)
		if err != nil {
			return p, err
		}
		p.Children = append(p.Children, child)
	}
	return p, nil
}

func SerializeUpdateTagPatterns(updateType asset.UpdateType, maxID uint32, present bool, dict []asset.IntEntry[TagPattern]) ([]byte, error) {
	w := asset.NewWriter(16)
	w.Uint8(asset.NullabilityBits(present))
	w.Uint8(uint8(updateType))
	w.Uint32(maxID)
	asset.WriteInlineOptionalDict(w, present, dict, func(w *asset.Writer, entries []asset.IntEntry[TagPattern]) {
		asset.SerializeIntKeyedDict(w, entries, writeTagPattern)
	})
	if err := checkMax(w.Len(), UpdateTagPatternsMaxSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func NewEmptyUpdateTagPatterns() []byte {
	b, _ := SerializeUpdateTagPatterns(asset.UpdateInit, 0, true, nil)
	return b
}

func DecodeUpdateTagPatterns(buf []byte) (asset.UpdateType, uint32, bool, []asset.IntEntry[TagPattern], error) {
	r := asset.NewReader(buf)
	nb, err := r.Uint8()
	if err != nil {
		return 0, 0, false, nil, err
	}
	typ, err := r.Uint8()
	if err != nil {
		return 0, 0, false, nil, err
	}
	maxID, err := r.Uint32()
	if err != nil {
		return 0, 0, false, nil, err
	}
	present := asset.NullabilityBit(nb, 0)
	if !present {
		return asset.UpdateType(typ), maxID, false, nil, nil
	}
	dict, err := asset.ReadIntKeyedDict(r, readTagPattern)
	return asset.UpdateType(typ), maxID, present, dict, err
}
