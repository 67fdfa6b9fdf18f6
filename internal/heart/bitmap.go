package heart

// Cell is one entry of the heart mask.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBody
	CellHighlight
	CellShadow
)

const (
	BitmapWidth  = 14
	BitmapHeight = 12
)

// Bitmap is the 3-tone heart mask, row major.
var Bitmap = [BitmapHeight][BitmapWidth]Cell{
	{0, 0, 0, 0, 3, 3, 0, 0, 3, 3, 0, 0, 0, 0},
	{0, 0, 0, 3, 1, 1, 3, 3, 1, 1, 3, 0, 0, 0},
	{0, 0, 3, 1, 2, 1, 1, 1, 1, 2, 1, 3, 0, 0},
	{0, 0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 3, 0, 0},
	{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 0},
	{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 0},
	{0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3, 0},
	{0, 0, 3, 1, 1, 1, 1, 1, 1, 1, 1, 3, 0, 0},
	{0, 0, 0, 3, 1, 1, 1, 1, 1, 1, 3, 0, 0, 0},
	{0, 0, 0, 0, 3, 1, 1, 1, 1, 3, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 3, 1, 1, 3, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 3, 3, 0, 0, 0, 0, 0, 0},
}
