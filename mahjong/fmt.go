package mahjong

import (
	"slices"
	"strconv"
	"strings"
)

// TilesGroupForm 手牌的国标分组形式：数牌按 m、p、s 分组排序，
// 字牌以字母串结尾。如 [1,1,2,3]万+[东,东] -> "1123mEE"
func TilesGroupForm(tiles []Tile) string {
	if len(tiles) == 0 {
		return ""
	}

	groups := map[byte][]int{}
	var honors []Tile
	for _, t := range tiles {
		if t.IsSuit() {
			letter := t.SuitLetter()
			groups[letter] = append(groups[letter], t.Point()+1)
		} else if t.IsHonor() {
			honors = append(honors, t)
		}
	}

	var sb strings.Builder
	for _, letter := range []byte{'m', 'p', 's'} {
		nums := groups[letter]
		if len(nums) == 0 {
			continue
		}
		slices.Sort(nums)
		for _, n := range nums {
			sb.WriteString(strconv.Itoa(n))
		}
		sb.WriteByte(letter)
	}

	if len(honors) > 0 {
		slices.Sort(honors)
		for _, t := range honors {
			sb.WriteString(t.GBChar())
		}
	}
	return sb.String()
}

// PackForm 副露的国标形式：[内容] 或 [内容,方向]。
// 方向为0或4时省略；字牌副露不带门字母。
func PackForm(p Pack) string {
	if len(p.Tiles) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteByte('[')
	for _, t := range p.Tiles {
		if t.IsSuit() {
			sb.WriteString(strconv.Itoa(t.Point() + 1))
		} else if t.IsHonor() {
			sb.WriteString(t.GBChar())
		}
	}
	if first := p.Tiles[0]; first.IsSuit() {
		sb.WriteByte(first.SuitLetter())
	}
	if p.Direction > 0 && p.Direction != 4 {
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(int(p.Direction)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// BuildHandBody 完整手牌串的牌体：副露 + 去掉和牌的立牌 + 和牌
func BuildHandBody(hand []Tile, packs []Pack, winTile Tile) string {
	var sb strings.Builder
	for _, p := range packs {
		sb.WriteString(PackForm(p))
	}

	concealed := slices.Clone(hand)
	if i := slices.Index(concealed, winTile); i >= 0 {
		concealed = slices.Delete(concealed, i, i+1)
	}
	sb.WriteString(TilesGroupForm(concealed))

	if winTile.IsValid() && !winTile.IsFlower() {
		sb.WriteString(winTile.GB())
	}
	return sb.String()
}

// BuildEnvFlag 六位环境串：圈风、座风、自摸、绝张、海底、抢杠
func BuildEnvFlag(roundWind, seatWind string, selfDrawn, lastCopy, seaBottom, robKong bool) string {
	bit := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	var sb strings.Builder
	sb.WriteString(roundWind)
	sb.WriteString(seatWind)
	sb.WriteByte(bit(selfDrawn))
	sb.WriteByte(bit(lastCopy))
	sb.WriteByte(bit(seaBottom))
	sb.WriteByte(bit(robKong))
	return sb.String()
}

// BuildFlowerSegment 花牌段：有具体花牌时为字母串，否则为数量
func BuildFlowerSegment(count int, flowers []Tile) string {
	if count == 0 && len(flowers) == 0 {
		return ""
	}
	if len(flowers) > 0 {
		var sb strings.Builder
		for _, t := range flowers {
			if t.IsFlower() {
				sb.WriteString(t.GBChar())
			}
		}
		return sb.String()
	}
	return strconv.Itoa(count)
}

// BuildFullHandString 喂给算番库的完整串：牌体|环境串[|花牌段]
func BuildFullHandString(hand []Tile, packs []Pack, winTile Tile,
	roundWind, seatWind string, selfDrawn, lastCopy, seaBottom, robKong bool,
	flowerCount int, flowers []Tile) string {
	var sb strings.Builder
	sb.WriteString(BuildHandBody(hand, packs, winTile))
	sb.WriteByte('|')
	sb.WriteString(BuildEnvFlag(roundWind, seatWind, selfDrawn, lastCopy, seaBottom, robKong))
	if seg := BuildFlowerSegment(flowerCount, flowers); seg != "" {
		sb.WriteByte('|')
		sb.WriteString(seg)
	}
	return sb.String()
}

// PackString 副露的中文形式，步骤日志使用
func PackString(p Pack) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for _, t := range p.Tiles {
		sb.WriteString(t.Name())
	}
	sb.WriteByte(']')
	return sb.String()
}
