package gbfan

import (
	"slices"
)

// FanType 一种番及其出现次数
type FanType struct {
	Name   string
	Points int
	Count  int
}

// Result 算番结果
type Result struct {
	TotalFan int
	Details  []FanType
}

// Calculate 解析手牌串并算番。非和牌型返回0番的空结果。
func Calculate(hand string) (*Result, error) {
	h, err := ParseHandtiles(hand)
	if err != nil {
		return nil, err
	}
	return h.CountFan(), nil
}

// CountFan 算番：特殊型直接计，标准型枚举全部拆解取最高
func (h *Handtiles) CountFan() *Result {
	if h.isThirteenOrphans() {
		f := newFanSet(h)
		f.add("十三幺", 88, 1)
		f.addEnvFans()
		f.addFlowers()
		return f.result()
	}

	if h.isSevenPairs() {
		f := newFanSet(h)
		if h.isLinkedSevenPairs() {
			f.add("连七对", 88, 1)
		} else {
			f.add("七对", 24, 1)
		}
		f.scoreTileSet()
		f.addEnvFans()
		f.addFlowers()
		return f.result()
	}

	decomps := h.decompose()
	if len(decomps) == 0 {
		return &Result{}
	}

	var best *Result
	for _, d := range decomps {
		f := newFanSet(h)
		f.scoreDecomposition(d)
		f.scoreTileSet()
		f.addEnvFans()
		f.addFlowers()
		r := f.result()
		if best == nil || r.TotalFan > best.TotalFan {
			best = r
		}
	}
	return best
}

// fanSet 收集番种并处理不计规则
type fanSet struct {
	h          *Handtiles
	fans       []FanType
	suppressed map[string]bool
}

func newFanSet(h *Handtiles) *fanSet {
	return &fanSet{h: h, suppressed: map[string]bool{}}
}

func (f *fanSet) add(name string, points, count int) {
	if count <= 0 {
		return
	}
	f.fans = append(f.fans, FanType{Name: name, Points: points, Count: count})
}

func (f *fanSet) suppress(names ...string) {
	for _, n := range names {
		f.suppressed[n] = true
	}
}

func (f *fanSet) result() *Result {
	res := &Result{}
	for _, fan := range f.fans {
		if f.suppressed[fan.Name] {
			continue
		}
		res.Details = append(res.Details, fan)
		res.TotalFan += fan.Points * fan.Count
	}
	if res.TotalFan == 0 {
		res.Details = append(res.Details, FanType{Name: "无番和", Points: 8, Count: 1})
		res.TotalFan = 8
	}
	return res
}

// scoreDecomposition 依赖拆解结构的番
func (f *fanSet) scoreDecomposition(d decomposition) {
	h := f.h

	var pons, kons, chows []meldSet
	anKo, anKon, mingKon := 0, 0, 0
	windPons, dragonPons := 0, 0
	for _, s := range d.Sets {
		switch s.Kind {
		case MeldChow:
			chows = append(chows, s)
		case MeldPon:
			pons = append(pons, s)
			if s.Concealed {
				anKo++
			}
		case MeldKon:
			kons = append(kons, s)
			pons = append(pons, s) // 杠同时视作刻子参与刻型番
			if s.Concealed {
				anKon++
				anKo++
			} else {
				mingKon++
			}
		}
		if s.Kind != MeldChow {
			if isWind(s.Tile) {
				windPons++
			}
			if isDragon(s.Tile) {
				dragonPons++
			}
		}
	}

	// 四喜与三元
	switch {
	case windPons == 4:
		f.add("大四喜", 88, 1)
		f.suppress("三风刻", "碰碰和", "圈风刻", "门风刻", "幺九刻")
	case windPons == 3 && isWind(d.Pair):
		f.add("小四喜", 64, 1)
		f.suppress("三风刻", "圈风刻", "门风刻")
	case windPons == 3:
		f.add("三风刻", 12, 1)
	}
	switch {
	case dragonPons == 3:
		f.add("大三元", 88, 1)
		f.suppress("双箭刻", "箭刻")
	case dragonPons == 2 && isDragon(d.Pair):
		f.add("小三元", 64, 1)
		f.suppress("双箭刻", "箭刻")
	case dragonPons == 2:
		f.add("双箭刻", 6, 1)
		f.suppress("箭刻")
	case dragonPons == 1:
		f.add("箭刻", 2, 1)
	}

	// 杠与暗刻
	switch len(kons) {
	case 4:
		f.add("四杠", 88, 1)
		f.suppress("三杠", "双明杠", "双暗杠", "明杠", "暗杠", "碰碰和")
	case 3:
		f.add("三杠", 32, 1)
		f.suppress("双明杠", "双暗杠", "明杠", "暗杠")
	case 2:
		switch anKon {
		case 2:
			f.add("双暗杠", 6, 1)
			f.suppress("双暗刻", "暗杠")
		case 1:
			f.add("明暗杠", 5, 1)
			f.suppress("明杠", "暗杠")
		default:
			f.add("双明杠", 4, 1)
			f.suppress("明杠")
		}
	case 1:
		if anKon == 1 {
			f.add("暗杠", 2, 1)
		} else {
			f.add("明杠", 1, 1)
		}
	}

	switch anKo {
	case 4:
		f.add("四暗刻", 64, 1)
		f.suppress("碰碰和", "三暗刻", "双暗刻", "不求人", "门前清")
	case 3:
		f.add("三暗刻", 16, 1)
		f.suppress("双暗刻")
	case 2:
		f.add("双暗刻", 2, 1)
	}

	if len(pons) == 4 {
		f.add("碰碰和", 6, 1)
	}

	// 刻型组合
	sameNumPons := func() (triple, double int) {
		for num := 1; num <= 9; num++ {
			suits := 0
			for _, s := range pons {
				if isSuit(s.Tile) && numOf(s.Tile) == num {
					suits++
				}
			}
			switch suits {
			case 3:
				triple++
			case 2:
				double++
			}
		}
		return
	}
	triple, double := sameNumPons()
	if triple > 0 {
		f.add("三同刻", 16, triple)
		f.suppress("双同刻")
	}
	f.add("双同刻", 2, double)

	// 幺九刻：幺九或非圈座风的字牌刻
	yaoKo := 0
	for _, s := range pons {
		if isTerminal(s.Tile) {
			yaoKo++
			continue
		}
		if isWind(s.Tile) {
			wind := s.Tile - windBase
			if wind != f.h.RoundWind && wind != f.h.SeatWind {
				yaoKo++
			}
		}
	}
	f.add("幺九刻", 1, yaoKo)

	for _, s := range pons {
		if isWind(s.Tile) && s.Tile-windBase == h.RoundWind {
			f.add("圈风刻", 2, 1)
		}
		if isWind(s.Tile) && s.Tile-windBase == h.SeatWind {
			f.add("门风刻", 2, 1)
		}
	}

	// 顺型番
	f.scoreChows(chows)

	// 全带幺：每副及将都含幺九字
	allOuter := true
	for _, s := range d.Sets {
		switch s.Kind {
		case MeldChow:
			if numOf(s.Tile) != 1 && numOf(s.Tile) != 7 {
				allOuter = false
			}
		default:
			if !isTerminal(s.Tile) && !isHonor(s.Tile) {
				allOuter = false
			}
		}
	}
	if allOuter && (isTerminal(d.Pair) || isHonor(d.Pair)) {
		counts := h.allCounts()
		pureTerminal, hasHonor, hasMiddle := true, false, false
		for id, c := range counts {
			if c == 0 {
				continue
			}
			if isHonor(id) {
				hasHonor = true
				pureTerminal = false
			} else if !isTerminal(id) {
				hasMiddle = true
				pureTerminal = false
			}
		}
		switch {
		case pureTerminal && !hasMiddle:
			f.add("清幺九", 64, 1)
			f.suppress("混幺九", "碰碰和", "全带幺", "双同刻", "幺九刻", "无字")
		case hasHonor && !hasMiddle:
			f.add("混幺九", 32, 1)
			f.suppress("碰碰和", "全带幺", "幺九刻")
		default:
			f.add("全带幺", 4, 1)
		}
	}

	// 平和：四顺加数牌将
	if len(chows) == 4 && isSuit(d.Pair) {
		f.add("平和", 2, 1)
		f.suppress("无字")
	}

	// 求人与门清
	claimedSets := 0
	for _, s := range d.Sets {
		if s.Claimed {
			claimedSets++
		}
	}
	switch {
	case claimedSets == 4 && !h.SelfDrawn:
		f.add("全求人", 6, 1)
		f.suppress("单钓将", "自摸")
	case h.IsMenzen() && h.SelfDrawn:
		f.add("不求人", 4, 1)
		f.suppress("自摸", "门前清")
	case h.IsMenzen() && !h.SelfDrawn:
		f.add("门前清", 2, 1)
	}

	// 四归一：非杠的四张同牌
	counts := h.allCounts()
	siGui := 0
	for id, c := range counts {
		if c != 4 {
			continue
		}
		inKon := false
		for _, s := range kons {
			if s.Tile == id {
				inKon = true
			}
		}
		if !inKon {
			siGui++
		}
	}
	f.add("四归一", 2, siGui)

	f.scoreWaitShape(d)
}

// scoreChows 顺子的组合番
func (f *fanSet) scoreChows(chows []meldSet) {
	type chowKey struct{ suit, num int }
	byKey := map[chowKey]int{}
	for _, s := range chows {
		byKey[chowKey{suitOf(s.Tile), numOf(s.Tile)}]++
	}

	// 一般高：两副相同顺子
	for _, n := range byKey {
		if n >= 2 {
			f.add("一般高", 1, n-1)
		}
	}

	// 喜相逢：两门相同数序的顺子；三门齐为三色三同顺
	xiang := 0
	sanSe := false
	for num := 1; num <= 7; num++ {
		suits := 0
		for suit := range 3 {
			if byKey[chowKey{suit, num}] > 0 {
				suits++
			}
		}
		if suits == 3 {
			sanSe = true
		}
		if suits >= 2 {
			xiang += suits - 1
		}
	}
	if sanSe {
		f.add("三色三同顺", 8, 1)
		f.suppress("喜相逢")
	} else {
		f.add("喜相逢", 1, xiang)
	}

	// 清龙与连六、老少副
	for suit := range 3 {
		if byKey[chowKey{suit, 1}] > 0 && byKey[chowKey{suit, 4}] > 0 && byKey[chowKey{suit, 7}] > 0 {
			f.add("清龙", 16, 1)
			f.suppress("连六", "老少副")
			return
		}
	}

	lian := 0
	for suit := range 3 {
		for num := 1; num <= 4; num++ {
			if byKey[chowKey{suit, num}] > 0 && byKey[chowKey{suit, num + 3}] > 0 {
				lian++
			}
		}
	}
	f.add("连六", 1, lian)

	laoShao := 0
	for suit := range 3 {
		if byKey[chowKey{suit, 1}] > 0 && byKey[chowKey{suit, 7}] > 0 {
			laoShao++
		}
	}
	f.add("老少副", 1, laoShao)
}

// scoreWaitShape 听型番：边张、坎张、单钓将
func (f *fanSet) scoreWaitShape(d decomposition) {
	h := f.h
	if h.WinTile < 0 {
		return
	}
	if d.Pair == h.WinTile {
		f.add("单钓将", 1, 1)
		return
	}
	for _, s := range d.Sets {
		if s.Kind != MeldChow || s.Claimed {
			continue
		}
		num := numOf(s.Tile)
		switch {
		case h.WinTile == s.Tile+1:
			f.add("坎张", 1, 1)
			return
		case h.WinTile == s.Tile+2 && num == 1:
			f.add("边张", 1, 1)
			return
		case h.WinTile == s.Tile && num == 7:
			f.add("边张", 1, 1)
			return
		}
	}
}

// scoreTileSet 只看整体牌面的番
func (f *fanSet) scoreTileSet() {
	h := f.h
	counts := h.allCounts()

	suits := map[int]bool{}
	hasHonor, hasWind, hasDragon := false, false, false
	minNum, maxNum := 10, 0
	for id, c := range counts {
		if c == 0 {
			continue
		}
		if isHonor(id) {
			hasHonor = true
			if isWind(id) {
				hasWind = true
			} else {
				hasDragon = true
			}
			continue
		}
		suits[suitOf(id)] = true
		minNum = min(minNum, numOf(id))
		maxNum = max(maxNum, numOf(id))
	}

	switch {
	case !hasHonor && len(suits) == 0:
		// 不可能：无牌
	case hasHonor && len(suits) == 0:
		f.add("字一色", 64, 1)
		f.suppress("碰碰和", "混幺九", "全带幺", "幺九刻", "缺一门")
	case !hasHonor && len(suits) == 1:
		f.add("清一色", 24, 1)
		f.suppress("混一色", "无字", "缺一门")
	case hasHonor && len(suits) == 1:
		f.add("混一色", 6, 1)
		f.suppress("缺一门")
	case len(suits) == 2:
		f.add("缺一门", 1, 1)
	}

	if len(suits) == 3 && hasWind && hasDragon {
		f.add("五门齐", 6, 1)
		f.suppress("缺一门", "无字")
	}

	if !hasHonor && len(suits) > 0 {
		switch {
		case minNum >= 7:
			f.add("全大", 24, 1)
			f.suppress("大于五", "无字")
		case maxNum <= 3:
			f.add("全小", 24, 1)
			f.suppress("小于五", "无字")
		case minNum >= 4 && maxNum <= 6:
			f.add("全中", 24, 1)
			f.suppress("断幺", "无字")
		case minNum >= 6:
			f.add("大于五", 12, 1)
			f.suppress("无字")
		case maxNum <= 4:
			f.add("小于五", 12, 1)
			f.suppress("无字")
		}
	}

	hasOuter := hasHonor
	for id, c := range counts {
		if c > 0 && isTerminal(id) {
			hasOuter = true
		}
	}
	if !hasOuter {
		f.add("断幺", 2, 1)
		f.suppress("无字")
	}
	if !hasHonor {
		f.add("无字", 1, 1)
	}
}

// addEnvFans 环境番：自摸、海底、抢杠、绝张
func (f *fanSet) addEnvFans() {
	h := f.h
	switch {
	case h.SeaBottom && h.SelfDrawn:
		f.add("妙手回春", 8, 1)
		f.suppress("自摸")
	case h.SeaBottom && !h.SelfDrawn:
		f.add("海底捞月", 8, 1)
	}
	if h.RobKong {
		f.add("抢杠和", 8, 1)
	}
	if h.LastCopy {
		f.add("和绝张", 4, 1)
	}
	if h.SelfDrawn {
		f.add("自摸", 1, 1)
	}
}

func (f *fanSet) addFlowers() {
	f.add("花牌", 1, f.h.FlowerCount)
}

// SortedDetails 按单番分值降序的明细，展示用
func (r *Result) SortedDetails() []FanType {
	out := slices.Clone(r.Details)
	slices.SortFunc(out, func(a, b FanType) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		return b.Count - a.Count
	})
	return out
}
