package topology

// Default returns the binw2 watch board.
//
//	6 |  14 <- PM
//	5 |  13 <- AM
//	4 |
//	3 |    5     12
//	2 |    4   8 11
//	1 |    3   7 10
//	0 |  1 2   6 9
//	--+------------
//	     0 1 2 3 4
//	     H H : M M
func Default() *Table {
	t, err := New(binw2)
	if err != nil {
		panic(err)
	}
	return t
}

// LineAMPM carries the AM/PM lamp pair: low = AM, high = PM.
const LineAMPM = 5

var binw2 = []Entry{
	{LED: 1, Pattern: 0x31, Cell: Cell{0, 0}},
	{LED: 2, Pattern: 0x51, Cell: Cell{1, 0}},
	{LED: 3, Pattern: 0x91, Cell: Cell{1, 1}},
	{LED: 4, Pattern: 0xA2, Cell: Cell{1, 2}},
	{LED: 5, Pattern: 0x62, Cell: Cell{1, 3}},
	{LED: 6, Pattern: 0x32, Cell: Cell{3, 0}},
	{LED: 7, Pattern: 0x64, Cell: Cell{3, 1}},
	{LED: 8, Pattern: 0xC4, Cell: Cell{3, 2}},
	{LED: 9, Pattern: 0x54, Cell: Cell{4, 0}},
	{LED: 10, Pattern: 0xA8, Cell: Cell{4, 1}},
	{LED: 11, Pattern: 0xC8, Cell: Cell{4, 2}},
	{LED: 12, Pattern: 0x98, Cell: Cell{4, 3}},
	{LED: 13, Kind: Indicator, Line: LineAMPM, Level: false, Cell: Cell{0, 5}},
	{LED: 14, Kind: Indicator, Line: LineAMPM, Level: true, Cell: Cell{0, 6}},
}
