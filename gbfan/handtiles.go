// Package gbfan 解析国标手牌串并计算番种。
// 作为算番库挂在 replay.FanCalculator 契约之后；
// 实现常用番种子集，未覆盖的番以声明/计算差值形式暴露。
package gbfan

import (
	"fmt"
	"strconv"
	"strings"
)

// 牌型编码：万0-8，条9-17，筒18-26，字27-33（东南西北中发白）
const (
	identityCount = 34
	honorBase     = 27
	windBase      = 27
	dragonBase    = 31
)

const honorLetters = "ESWNCFP"

func isSuit(id int) bool     { return id >= 0 && id < honorBase }
func isHonor(id int) bool    { return id >= honorBase && id < identityCount }
func isWind(id int) bool     { return id >= windBase && id < dragonBase }
func isDragon(id int) bool   { return id >= dragonBase && id < identityCount }
func suitOf(id int) int      { return id / 9 }
func numOf(id int) int       { return id%9 + 1 }
func isTerminal(id int) bool { return isSuit(id) && (numOf(id) == 1 || numOf(id) == 9) }

type MeldKind int

const (
	MeldChow MeldKind = iota
	MeldPon
	MeldKon
)

// Meld 副露：Claimed 表示成副的牌来自他家
type Meld struct {
	Kind    MeldKind
	Tile    int // 顺子记最小牌型，刻杠记牌型
	Claimed bool
	Added   bool // 补杠
}

// Handtiles 解析后的完整手牌
type Handtiles struct {
	Melds     []Meld
	Concealed []int // 立牌牌型，不含和牌
	WinTile   int

	RoundWind int // 0-3
	SeatWind  int
	SelfDrawn bool
	LastCopy  bool
	SeaBottom bool
	RobKong   bool

	FlowerCount int
}

// ParseHandtiles 解析 牌体|环境串[|花牌段] 形式的手牌串
func ParseHandtiles(s string) (*Handtiles, error) {
	segments := strings.Split(s, "|")
	if len(segments) < 2 {
		return nil, fmt.Errorf("handtiles %q: missing env segment", s)
	}

	h := &Handtiles{WinTile: -1}
	if err := h.parseBody(segments[0]); err != nil {
		return nil, err
	}
	if err := h.parseEnv(segments[1]); err != nil {
		return nil, err
	}
	if len(segments) > 2 {
		h.parseFlowers(segments[2])
	}
	return h, nil
}

func (h *Handtiles) parseBody(body string) error {
	var tiles []int // 牌体顺序的立牌+和牌
	i := 0
	for i < len(body) {
		c := body[i]
		switch {
		case c == '[':
			end := strings.IndexByte(body[i:], ']')
			if end < 0 {
				return fmt.Errorf("handtiles body %q: unclosed pack", body)
			}
			if err := h.parsePack(body[i+1 : i+end]); err != nil {
				return err
			}
			i += end + 1

		case c >= '1' && c <= '9':
			j := i
			for j < len(body) && body[j] >= '1' && body[j] <= '9' {
				j++
			}
			if j >= len(body) {
				return fmt.Errorf("handtiles body %q: digits without suit letter", body)
			}
			suit, err := suitIndex(body[j])
			if err != nil {
				return err
			}
			for k := i; k < j; k++ {
				tiles = append(tiles, suit*9+int(body[k]-'1'))
			}
			i = j + 1

		default:
			id := strings.IndexByte(honorLetters, c)
			if id < 0 {
				return fmt.Errorf("handtiles body %q: unexpected char %q", body, c)
			}
			tiles = append(tiles, honorBase+id)
			i++
		}
	}

	if len(tiles) == 0 {
		return fmt.Errorf("handtiles body %q: no concealed tiles", body)
	}
	h.WinTile = tiles[len(tiles)-1]
	h.Concealed = tiles[:len(tiles)-1]
	return nil
}

func (h *Handtiles) parsePack(content string) error {
	dir := 0
	if comma := strings.IndexByte(content, ','); comma >= 0 {
		d, err := strconv.Atoi(content[comma+1:])
		if err != nil {
			return fmt.Errorf("pack %q: bad direction", content)
		}
		dir = d
		content = content[:comma]
	}

	var tiles []int
	var digits []byte
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c >= '1' && c <= '9':
			digits = append(digits, c)
		case c == 'm' || c == 's' || c == 'p':
			suit, _ := suitIndex(c)
			for _, d := range digits {
				tiles = append(tiles, suit*9+int(d-'1'))
			}
			digits = nil
		default:
			id := strings.IndexByte(honorLetters, c)
			if id < 0 {
				return fmt.Errorf("pack %q: unexpected char %q", content, c)
			}
			tiles = append(tiles, honorBase+id)
		}
	}
	if len(digits) > 0 {
		return fmt.Errorf("pack %q: digits without suit letter", content)
	}

	switch len(tiles) {
	case 3:
		if tiles[0] == tiles[1] && tiles[1] == tiles[2] {
			h.Melds = append(h.Melds, Meld{Kind: MeldPon, Tile: tiles[0], Claimed: true})
			return nil
		}
		low := min(tiles[0], min(tiles[1], tiles[2]))
		h.Melds = append(h.Melds, Meld{Kind: MeldChow, Tile: low, Claimed: true})
		return nil
	case 4:
		if tiles[0] != tiles[1] || tiles[1] != tiles[2] || tiles[2] != tiles[3] {
			return fmt.Errorf("pack %q: kong tiles differ", content)
		}
		h.Melds = append(h.Melds, Meld{
			Kind:    MeldKon,
			Tile:    tiles[0],
			Claimed: dir != 0 && dir != 4,
			Added:   dir >= 5,
		})
		return nil
	default:
		return fmt.Errorf("pack %q: %d tiles", content, len(tiles))
	}
}

func (h *Handtiles) parseEnv(env string) error {
	if len(env) < 6 {
		return fmt.Errorf("env flag %q: want 6 chars", env)
	}
	round := strings.IndexByte("ESWN", env[0])
	seat := strings.IndexByte("ESWN", env[1])
	if round < 0 || seat < 0 {
		return fmt.Errorf("env flag %q: bad wind letters", env)
	}
	h.RoundWind = round
	h.SeatWind = seat
	h.SelfDrawn = env[2] == '1'
	h.LastCopy = env[3] == '1'
	h.SeaBottom = env[4] == '1'
	h.RobKong = env[5] == '1'
	return nil
}

func (h *Handtiles) parseFlowers(seg string) {
	if n, err := strconv.Atoi(seg); err == nil {
		h.FlowerCount = n
		return
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] >= 'a' && seg[i] <= 'h' {
			h.FlowerCount++
		}
	}
}

func suitIndex(letter byte) (int, error) {
	switch letter {
	case 'm':
		return 0, nil
	case 's':
		return 1, nil
	case 'p':
		return 2, nil
	default:
		return 0, fmt.Errorf("unknown suit letter %q", letter)
	}
}

// allCounts 全部34种牌型的张数，含副露与和牌
func (h *Handtiles) allCounts() [identityCount]int {
	var counts [identityCount]int
	for _, id := range h.Concealed {
		counts[id]++
	}
	if h.WinTile >= 0 {
		counts[h.WinTile]++
	}
	for _, m := range h.Melds {
		n := 3
		if m.Kind == MeldKon {
			n = 4
		}
		if m.Kind == MeldChow {
			counts[m.Tile]++
			counts[m.Tile+1]++
			counts[m.Tile+2]++
		} else {
			counts[m.Tile] += n
		}
	}
	return counts
}

// concealedCounts 立牌加和牌的张数
func (h *Handtiles) concealedCounts() [identityCount]int {
	var counts [identityCount]int
	for _, id := range h.Concealed {
		counts[id]++
	}
	if h.WinTile >= 0 {
		counts[h.WinTile]++
	}
	return counts
}

// IsMenzen 门清：无副露或仅暗杠
func (h *Handtiles) IsMenzen() bool {
	for _, m := range h.Melds {
		if m.Claimed {
			return false
		}
	}
	return true
}
