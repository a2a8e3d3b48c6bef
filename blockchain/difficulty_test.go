// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Copyright (c) 2024 The forkpowd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/forkpow/forkpowd/chaincfg"
)

func TestBigToCompact(t *testing.T) {
	tests := []struct {
		in  int64
		out uint32
	}{
		{0, 0},
		{-1, 25231360},
		{0x12, 0x01120000},
		{0x1234, 0x02123400},
		{0x123456, 0x03123456},
		{0x12345600, 0x04123456},
		{0x92340000, 0x05009234},
	}

	for x, test := range tests {
		n := big.NewInt(test.in)
		r := BigToCompact(n)
		if r != test.out {
			t.Errorf("TestBigToCompact test #%d failed: got %d want %d\n",
				x, r, test.out)
			return
		}
	}
}

func TestCompactToBig(t *testing.T) {
	tests := []struct {
		in  uint32
		out int64
	}{
		{10000000, 0},
		{0x01123456, 0x12},
		{0x01fedcba, -0x7e},
		{0x04923456, -0x12345600},
		{0x05009234, 0x92340000},
	}

	for x, test := range tests {
		n := CompactToBig(test.in)
		want := big.NewInt(test.out)
		if n.Cmp(want) != 0 {
			t.Errorf("TestCompactToBig test #%d failed: got %d want %d\n",
				x, n.Int64(), want.Int64())
			return
		}
	}
}

func TestCalcWork(t *testing.T) {
	tests := []struct {
		in  uint32
		out int64
	}{
		{10000000, 0},
		{0x04923456, 0},
		{0x1d00ffff, 0x100010001},
	}

	for x, test := range tests {
		bits := uint32(test.in)

		r := CalcWork(bits)
		if r.Int64() != test.out {
			t.Errorf("TestCalcWork test #%d failed: got %v want %d\n",
				x, r.Int64(), test.out)
			return
		}
	}
}

// TestCalcNextRequiredDifficultyLegacy ensures retargets before the first
// fork use the two week timespan with a factor of four limiter.
func TestCalcNextRequiredDifficultyLegacy(t *testing.T) {
	params := forkParams(chaincfg.ForkDisabled, chaincfg.ForkDisabled)

	tests := []struct {
		name       string
		lastHeight int32
		firstTime  int64
		lastTime   int64
		bits       uint32
		want       uint32
	}{
		{
			name:       "regular retarget",
			lastHeight: 32255,
			firstTime:  1261130161,
			lastTime:   1262152739,
			bits:       0x1d00ffff,
			want:       0x1d00d86a,
		},
		{
			name:       "limited by pow limit",
			lastHeight: 2015,
			firstTime:  1231006505,
			lastTime:   1233061996,
			bits:       0x1d00ffff,
			want:       0x1d00ffff,
		},
		{
			name:       "lower limit actual",
			lastHeight: 68543,
			firstTime:  1279008237,
			lastTime:   1279297671,
			bits:       0x1c05a3f4,
			want:       0x1c0168fd,
		},
		{
			name:       "upper limit actual",
			lastHeight: 46367,
			firstTime:  1263163443,
			lastTime:   1269211443,
			bits:       0x1c387f6f,
			want:       0x1d00e1fd,
		},
		{
			name:       "exact target timespan",
			lastHeight: 4031,
			firstTime:  1300000000,
			lastTime:   1300000000 + 14*24*60*60,
			bits:       0x1d00ffff,
			want:       0x1d00ffff,
		},
	}

	for _, test := range tests {
		// Only the first and last timestamps of the window matter.
		chain := newFakeChain(test.lastHeight - 2015)
		chain.addSpaced(2015, test.bits, test.firstTime, 0)
		last := chain.add(test.bits, test.lastTime)

		got, err := CalcNextRequiredDifficulty(last, time.Unix(test.lastTime+600, 0), params)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: got %08x want %08x", test.name, got, test.want)
		}
	}
}

// TestCalcNextRequiredDifficultyForks exercises the retarget rules around and
// after both forks.
func TestCalcNextRequiredDifficultyForks(t *testing.T) {
	const start = 1600000000

	tests := []struct {
		name    string
		forkOne int32
		forkTwo int32
		blocks  int
		spacing int64
		bits    uint32
		want    uint32
	}{
		{
			// Height 1000 is not a multiple of the 126 block interval
			// but the fork forces a retarget, capped at 99/70.
			name:    "fork one boundary limited",
			forkOne: 1000,
			forkTwo: chaincfg.ForkDisabled,
			blocks:  1000,
			spacing: 1200,
			bits:    0x1c460000,
			want:    0x1c630000,
		},
		{
			name:    "fork one interval retarget",
			forkOne: 1000,
			forkTwo: chaincfg.ForkDisabled,
			blocks:  1008,
			spacing: 600,
			bits:    0x1c460000,
			want:    0x1c4571c7,
		},
		{
			name:    "fork one between retargets",
			forkOne: 1000,
			forkTwo: chaincfg.ForkDisabled,
			blocks:  1001,
			spacing: 600,
			bits:    0x1c460000,
			want:    0x1c460000,
		},
		{
			name:    "fork two damped",
			forkOne: 1008,
			forkTwo: 1240,
			blocks:  1240,
			spacing: 550,
			bits:    0x1c460000,
			want:    0x1c440795,
		},
		{
			name:    "fork two lower limit",
			forkOne: 1008,
			forkTwo: 1240,
			blocks:  1240,
			spacing: 300,
			bits:    0x1c460000,
			want:    0x1c40305b,
		},
		{
			name:    "fork two upper limit",
			forkOne: 1008,
			forkTwo: 1240,
			blocks:  1240,
			spacing: 5000,
			bits:    0x1c460000,
			want:    0x1c4c5555,
		},
		{
			name:    "fork two interval retarget",
			forkOne: 1008,
			forkTwo: 1240,
			blocks:  1271,
			spacing: 550,
			bits:    0x1c460000,
			want:    0x1c440795,
		},
		{
			// The long window reaches past the genesis block and
			// stops there.
			name:    "fork two long window at genesis",
			forkOne: 31,
			forkTwo: 62,
			blocks:  62,
			spacing: 700,
			bits:    0x1c460000,
			want:    0x1c4329b7,
		},
		{
			name:    "fork two long window at genesis pow limit",
			forkOne: 31,
			forkTwo: 62,
			blocks:  62,
			spacing: 700,
			bits:    0x1d00ffff,
			want:    0x1d00f59e,
		},
	}

	for _, test := range tests {
		params := forkParams(test.forkOne, test.forkTwo)
		chain := newFakeChain(0)
		last := chain.addSpaced(test.blocks, test.bits, start, test.spacing)

		newTime := time.Unix(last.Timestamp()+test.spacing, 0)
		got, err := CalcNextRequiredDifficulty(last, newTime, params)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: got %08x want %08x", test.name, got, test.want)
		}
	}
}

// TestCalcNextRequiredDifficultyMinDiff ensures networks which reduce the
// minimum difficulty hand out the pow limit after a stale gap and otherwise
// fall back to the last block without the special rule applied.
func TestCalcNextRequiredDifficultyMinDiff(t *testing.T) {
	params := chaincfg.TestNetParams
	params.ForkOneHeight = chaincfg.ForkDisabled
	params.ForkTwoHeight = chaincfg.ForkDisabled
	limitBits := params.PowLimitBits

	const start = 1500000000
	chain := newFakeChain(0)
	chain.addSpaced(2016, 0x1c0fffff, start, 600)
	boundary := chain.add(0x1c0aaaaa, start+2016*600)
	chain.add(limitBits, boundary.Timestamp()+1300)
	lastLimit := chain.add(limitBits, boundary.Timestamp()+2600)

	tests := []struct {
		name    string
		last    HeaderCtx
		newTime int64
		want    uint32
	}{
		{
			name:    "stale gap",
			last:    lastLimit,
			newTime: lastLimit.Timestamp() + 1201,
			want:    limitBits,
		},
		{
			name:    "exactly twice the spacing",
			last:    lastLimit,
			newTime: lastLimit.Timestamp() + 1200,
			want:    0x1c0aaaaa,
		},
		{
			name:    "walk back to boundary",
			last:    lastLimit,
			newTime: lastLimit.Timestamp() + 60,
			want:    0x1c0aaaaa,
		},
		{
			name:    "last block not special",
			last:    boundary,
			newTime: boundary.Timestamp() + 60,
			want:    0x1c0aaaaa,
		},
	}

	for _, test := range tests {
		got, err := CalcNextRequiredDifficulty(test.last,
			time.Unix(test.newTime, 0), &params)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("%s: got %08x want %08x", test.name, got, test.want)
		}
	}

	// A chain made only of special blocks walks back to genesis.
	chain = newFakeChain(0)
	last := chain.addSpaced(5, limitBits, start, 600)
	got, err := CalcNextRequiredDifficulty(last, time.Unix(last.Timestamp()+60, 0), &params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != limitBits {
		t.Fatalf("genesis walk: got %08x want %08x", got, limitBits)
	}
}

func TestCalcNextRequiredDifficultyNoRetargeting(t *testing.T) {
	params := &chaincfg.RegressionNetParams
	chain := newFakeChain(0)
	last := chain.addSpaced(2016, 0x1f00ffff, 1500000000, 1)

	got, err := CalcNextRequiredDifficulty(last, time.Unix(last.Timestamp()+1, 0), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0x1f00ffff {
		t.Fatalf("got %08x want %08x", got, 0x1f00ffff)
	}
}

func TestCalcNextRequiredDifficultyErrors(t *testing.T) {
	var assertErr AssertError

	_, err := CalcNextRequiredDifficulty(nil, time.Now(), &chaincfg.MainNetParams)
	if !errors.As(err, &assertErr) {
		t.Fatalf("nil previous block: got %v, want AssertError", err)
	}

	// A forced retarget with fewer blocks than an interval has no block at
	// the start of the window.
	chain := newFakeChain(0)
	last := chain.addSpaced(10, 0x1d00ffff, 1500000000, 600)
	_, err = CalcNextRequiredDifficulty(last, time.Now(), forkParams(10, chaincfg.ForkDisabled))
	if !errors.As(err, &assertErr) {
		t.Fatalf("short chain: got %v, want AssertError", err)
	}

	// A chain view which does not reach back to the start of the window.
	chain = newFakeChain(1000)
	last = chain.addSpaced(1016, 0x1d00ffff, 1500000000, 600)
	_, err = CalcNextRequiredDifficulty(last, time.Now(),
		forkParams(chaincfg.ForkDisabled, chaincfg.ForkDisabled))
	if !errors.As(err, &assertErr) {
		t.Fatalf("missing ancestor: got %v, want AssertError", err)
	}

	// Parameters which leave an empty retarget interval.
	params := forkParams(chaincfg.ForkDisabled, chaincfg.ForkDisabled)
	params.TargetTimePerBlock = params.TargetTimespan + time.Second
	_, err = CalcNextRequiredDifficulty(last, time.Now(), params)
	if !errors.As(err, &assertErr) {
		t.Fatalf("empty interval: got %v, want AssertError", err)
	}
}

// TestCalcNextRequiredDifficultyBounds checks that a retarget never leaves the
// limiter range for its regime and never exceeds the pow limit.
func TestCalcNextRequiredDifficultyBounds(t *testing.T) {
	type regime struct {
		name     string
		params   *chaincfg.Params
		blocks   int
		limitNum int64
		limitDen int64
	}
	regimes := []regime{
		{"legacy", forkParams(chaincfg.ForkDisabled, chaincfg.ForkDisabled), 2016, 4, 1},
		{"fork one", forkParams(0, chaincfg.ForkDisabled), 126, 99, 70},
		{"fork two", forkParams(0, 0), 155, 494, 453},
	}
	spacings := []int64{1, 60, 300, 599, 600, 601, 1200, 3600, 86400}
	bitsList := []uint32{0x1d00ffff, 0x1c05a3f4, 0x1b0404cb, 0x1a05db8b}

	for _, r := range regimes {
		for _, spacing := range spacings {
			for _, bits := range bitsList {
				chain := newFakeChain(0)
				last := chain.addSpaced(r.blocks, bits, 1500000000, spacing)
				got, err := CalcNextRequiredDifficulty(last,
					time.Unix(last.Timestamp()+600, 0), r.params)
				if err != nil {
					t.Fatalf("%s: unexpected error: %v", r.name, err)
				}

				oldTarget := CompactToBig(bits)
				newTarget := CompactToBig(got)
				if newTarget.Cmp(r.params.PowLimit) > 0 {
					t.Fatalf("%s: target %064x above pow limit", r.name,
						newTarget)
				}

				// Allow one unit of slack per bound for the
				// integer division and compact truncation.
				maxTarget := new(big.Int).Mul(oldTarget, big.NewInt(r.limitNum))
				maxTarget.Div(maxTarget, big.NewInt(r.limitDen))
				minTarget := new(big.Int).Mul(oldTarget, big.NewInt(r.limitDen))
				minTarget.Div(minTarget, big.NewInt(r.limitNum))
				minTarget.Mul(minTarget, big.NewInt(99))
				minTarget.Div(minTarget, big.NewInt(100))
				if newTarget.Cmp(maxTarget) > 0 || newTarget.Cmp(minTarget) < 0 {
					t.Fatalf("%s spacing %d bits %08x: target %064x "+
						"outside [%064x, %064x]\n%s", r.name, spacing,
						bits, newTarget, minTarget, maxTarget,
						spew.Sdump(last))
				}
			}
		}
	}
}

// TestCalcNextRequiredDifficultyHeaderChain ensures the calculation works on
// the block index as well as on the fake chain.
func TestCalcNextRequiredDifficultyHeaderChain(t *testing.T) {
	params := forkParams(chaincfg.ForkDisabled, chaincfg.ForkDisabled)
	chain := newFakeChain(0)
	fakeLast := chain.addSpaced(2016, 0x1d00ffff, 1231006505, 500)

	index := NewBlockIndex()
	var last *BlockNode
	for _, header := range fakeHeaders(chain) {
		node, err := index.AddNode(header)
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
		last = node
	}

	newTime := time.Unix(fakeLast.Timestamp()+500, 0)
	want, err := CalcNextRequiredDifficulty(fakeLast, newTime, params)
	if err != nil {
		t.Fatalf("fake chain: %v", err)
	}
	got, err := CalcNextRequiredDifficulty(last, newTime, params)
	if err != nil {
		t.Fatalf("block index: %v", err)
	}
	if got != want {
		t.Fatalf("got %08x want %08x", got, want)
	}
	if want == 0x1d00ffff {
		t.Fatalf("expected a harder target after fast blocks, got %08x", want)
	}
}
