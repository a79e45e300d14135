package gbfan

// 和牌判定与牌型拆解。副露固定，立牌递归拆成刻子与顺子。

type meldSet struct {
	Kind      MeldKind
	Tile      int
	Concealed bool
	Claimed   bool
	Added     bool
}

type decomposition struct {
	Sets []meldSet
	Pair int
}

// IsWin 是否构成和牌型：标准型、七对或十三幺
func (h *Handtiles) IsWin() bool {
	if h.WinTile < 0 {
		return false
	}
	if h.isThirteenOrphans() || h.isSevenPairs() {
		return true
	}
	return len(h.decompose()) > 0
}

// isSevenPairs 七对：无副露，七个对子（四张算两对）
func (h *Handtiles) isSevenPairs() bool {
	if len(h.Melds) != 0 {
		return false
	}
	counts := h.concealedCounts()
	pairs := 0
	for _, c := range counts {
		if c%2 != 0 {
			return false
		}
		pairs += c / 2
	}
	return pairs == 7
}

// isLinkedSevenPairs 连七对：同门七个连续对子
func (h *Handtiles) isLinkedSevenPairs() bool {
	if !h.isSevenPairs() {
		return false
	}
	counts := h.concealedCounts()
	start := -1
	for id, c := range counts {
		if c == 0 {
			continue
		}
		if c != 2 || !isSuit(id) {
			return false
		}
		if start < 0 {
			start = id
		}
	}
	if start < 0 {
		return false
	}
	for id := start; id < start+7; id++ {
		if id >= identityCount || suitOf(id) != suitOf(start) || counts[id] != 2 {
			return false
		}
	}
	return true
}

var orphanIdentities = []int{0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33}

// isThirteenOrphans 十三幺：十三种幺九字各至少一张，其一成对
func (h *Handtiles) isThirteenOrphans() bool {
	if len(h.Melds) != 0 {
		return false
	}
	counts := h.concealedCounts()
	total := 0
	for _, id := range orphanIdentities {
		if counts[id] == 0 {
			return false
		}
		total += counts[id]
	}
	return total == 14
}

// decompose 枚举标准型的所有拆解；无解返回空
func (h *Handtiles) decompose() []decomposition {
	needSets := 4 - len(h.Melds)
	if needSets < 0 {
		return nil
	}

	counts := h.concealedCounts()
	fixed := make([]meldSet, 0, len(h.Melds))
	for _, m := range h.Melds {
		fixed = append(fixed, meldSet{
			Kind:      m.Kind,
			Tile:      m.Tile,
			Concealed: m.Kind == MeldKon && !m.Claimed,
			Claimed:   m.Claimed,
			Added:     m.Added,
		})
	}

	var results []decomposition
	for pair := 0; pair < identityCount; pair++ {
		if counts[pair] < 2 {
			continue
		}
		counts[pair] -= 2
		for _, sets := range decomposeSets(&counts, 0, needSets) {
			d := decomposition{Pair: pair}
			d.Sets = append(d.Sets, fixed...)
			d.Sets = append(d.Sets, sets...)
			h.demoteWinSet(&d)
			results = append(results, d)
		}
		counts[pair] += 2
	}
	return results
}

// decomposeSets 从from起找need组刻子/顺子，返回全部组合
func decomposeSets(counts *[identityCount]int, from, need int) [][]meldSet {
	if need == 0 {
		for id := from; id < identityCount; id++ {
			if counts[id] != 0 {
				return nil
			}
		}
		return [][]meldSet{{}}
	}

	id := from
	for id < identityCount && counts[id] == 0 {
		id++
	}
	if id >= identityCount {
		return nil
	}

	var results [][]meldSet

	if counts[id] >= 3 {
		counts[id] -= 3
		for _, rest := range decomposeSets(counts, id, need-1) {
			set := []meldSet{{Kind: MeldPon, Tile: id, Concealed: true}}
			results = append(results, append(set, rest...))
		}
		counts[id] += 3
	}

	if isSuit(id) && numOf(id) <= 7 && counts[id+1] > 0 && counts[id+2] > 0 {
		counts[id]--
		counts[id+1]--
		counts[id+2]--
		for _, rest := range decomposeSets(counts, id, need-1) {
			set := []meldSet{{Kind: MeldChow, Tile: id, Concealed: true}}
			results = append(results, append(set, rest...))
		}
		counts[id]++
		counts[id+1]++
		counts[id+2]++
	}

	return results
}

// demoteWinSet 点和时和牌所在的手内刻子不算暗刻
func (h *Handtiles) demoteWinSet(d *decomposition) {
	if h.SelfDrawn || h.WinTile < 0 {
		return
	}
	if d.Pair == h.WinTile {
		return // 和在将上，刻子维持暗刻
	}
	for i := range d.Sets {
		s := &d.Sets[i]
		if s.Kind == MeldChow && s.Concealed && !s.Claimed &&
			h.WinTile >= s.Tile && h.WinTile <= s.Tile+2 {
			return // 和在顺子里，暗刻不受影响
		}
	}
	for i := range d.Sets {
		s := &d.Sets[i]
		if s.Kind == MeldPon && s.Concealed && s.Tile == h.WinTile {
			s.Concealed = false
			return
		}
	}
}
