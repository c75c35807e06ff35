package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
	"github.com/careshift-dev/hospital-roster/backend/internal/repository"
	"github.com/careshift-dev/hospital-roster/backend/internal/rules"
	"github.com/careshift-dev/hospital-roster/backend/internal/utils"
	"github.com/careshift-dev/hospital-roster/backend/internal/workflow"
)

// 标准班次集合，覆盖全天
var standardShifts = []domain.Shift{
	{Name: "早班", StartTime: "08:00:00", EndTime: "16:00:00", Type: domain.ShiftTypeMorning, Status: domain.ShiftStatusActive},
	{Name: "中班", StartTime: "12:00:00", EndTime: "20:00:00", Type: domain.ShiftTypeMiddle, Status: domain.ShiftStatusActive},
	{Name: "晚班", StartTime: "16:00:00", EndTime: "22:00:00", Type: domain.ShiftTypeEvening, Status: domain.ShiftStatusActive},
	{Name: "夜班", StartTime: "22:00:00", EndTime: "06:00:00", Type: domain.ShiftTypeNight, Status: domain.ShiftStatusActive},
}

// SeedStandardShifts 插入标准班次
func SeedStandardShifts(r *repository.Repository) []*domain.Shift {
	shifts := make([]*domain.Shift, 0, len(standardShifts))
	for i := range standardShifts {
		shift := standardShifts[i]
		if err := r.CreateShift(&shift); err != nil {
			slog.Error("无法插入班次", "name", shift.Name, "error", err)
			continue
		}
		shifts = append(shifts, &shift)
	}
	return shifts
}

// SeedConventionsForUsers 为每个用户随机关联若干约定，约定文本来自样本库
func SeedConventionsForUsers(r *repository.Repository, users []*domain.User) {
	for _, user := range users {
		n := rand.Intn(3) // 每个用户 0~2 条约定
		for i := 0; i < n; i++ {
			convention := utils.GenerateRandomConvention()
			if err := r.CreateConvention(convention); err != nil {
				slog.Error("无法插入约定", "title", convention.Title, "error", err)
				continue
			}

			selectionType := domain.SelectionTypeAdminAssigned
			if rand.Intn(2) == 0 {
				selectionType = domain.SelectionTypeUserSelected
			}

			uc := &domain.UserConvention{
				UserID:        user.ID,
				ConventionID:  convention.ID,
				SelectionType: selectionType,
			}
			if err := r.CreateUserConvention(uc); err != nil {
				slog.Error("无法关联约定", "userID", user.ID, "conventionID", convention.ID, "error", err)
			}
		}
	}
}

// SeedAssignments 在接下来的 days 天内为用户随机排班。
// 排班走完整的校验工作流，被约定拒绝的请求会被跳过，因此生成的数据一定是合法的
func SeedAssignments(r *repository.Repository, users []*domain.User, shifts []*domain.Shift, days int, adminID int64) int {
	wf := workflow.New(r, rules.NewEngine(r, r, r))
	today := rules.NormalizeDate(time.Now())

	count := 0
	for _, user := range users {
		for day := 0; day < days; day++ {
			if rand.Intn(2) == 0 {
				continue
			}

			shift := shifts[rand.Intn(len(shifts))]
			params := workflow.CreateParams{
				UserID:  user.ID,
				ShiftID: shift.ID,
				Date:    today.AddDate(0, 0, day),
			}

			if _, err := wf.Create(params, adminID); err != nil {
				// 校验失败是预期内的，换一天继续
				continue
			}
			count++
		}
	}

	return count
}
