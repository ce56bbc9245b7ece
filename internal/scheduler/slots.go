package scheduler

// SlotsPerDay: 每天固定的时间段数量
const SlotsPerDay = 7

// defaultTimeSlots: 时间段编号和时间区间的默认对应表
var defaultTimeSlots = map[int]string{
	1: "9:00 - 9:55",
	2: "9:55 - 10:50",
	3: "11:10 - 12:05",
	4: "12:05 - 1:00",
	5: "1:20 - 2:15",
	6: "2:15 - 3:10",
	7: "3:30 - 4:25",
}

// labStartSlots: 实验课和特殊课允许的起始时间段
// 1/3/5 之后都紧跟着一个连续的时间段，可以容纳连堂的第二节
var labStartSlots = map[int]bool{
	1: true,
	3: true,
	5: true,
}

// DefaultTimeSlots 返回默认对应表的副本，防止调用方修改
func DefaultTimeSlots() map[int]string {
	slots := make(map[int]string, len(defaultTimeSlots))
	for slot, interval := range defaultTimeSlots {
		slots[slot] = interval
	}
	return slots
}

// SlotInterval 根据时间段编号查时间区间
func SlotInterval(timeSlots map[int]string, slot int) (string, bool) {
	if timeSlots == nil {
		timeSlots = defaultTimeSlots
	}
	interval, exists := timeSlots[slot]
	return interval, exists
}

// SlotNumber 根据时间区间查时间段编号，即对应表的逆映射
func SlotNumber(timeSlots map[int]string, interval string) (int, bool) {
	if timeSlots == nil {
		timeSlots = defaultTimeSlots
	}
	for slot, candidate := range timeSlots {
		if candidate == interval {
			return slot, true
		}
	}
	return 0, false
}

// IsLabStartSlot 判断某个时间段是否允许实验课/特殊课开始
func IsLabStartSlot(slot int) bool {
	return labStartSlots[slot]
}
