package utils

import (
	"fmt"
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"

	"github.com/careshift-dev/hospital-roster/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "莉", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

// 随机生成的员工只会是护士或护士长，管理员账号单独创建
var seedRoles = []domain.Role{
	domain.RoleNurse,
	domain.RoleNurse,
	domain.RoleNurse,
	domain.RoleHeadNurse,
}

func GenerateRandomRole() domain.Role {
	return seedRoles[rand.Intn(len(seedRoles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

// 医院常见的班次模板
var shiftTemplates = []domain.Shift{
	{Name: "早班", StartTime: "08:00:00", EndTime: "16:00:00", Type: domain.ShiftTypeMorning},
	{Name: "中班", StartTime: "12:00:00", EndTime: "20:00:00", Type: domain.ShiftTypeMiddle},
	{Name: "晚班", StartTime: "16:00:00", EndTime: "22:00:00", Type: domain.ShiftTypeEvening},
	{Name: "夜班", StartTime: "22:00:00", EndTime: "06:00:00", Type: domain.ShiftTypeNight},
	{Name: "半日班", StartTime: "08:00:00", EndTime: "12:00:00", Type: domain.ShiftTypeMorning},
}

func GenerateRandomShift() *domain.Shift {
	template := shiftTemplates[rand.Intn(len(shiftTemplates))]
	shift := template
	shift.Name = fmt.Sprintf("%s-%02d", template.Name, rand.Intn(100))
	shift.Status = domain.ShiftStatusActive
	return &shift
}

// 约定文本样本，覆盖校验引擎能识别的各种关键词，
// 也包含引擎识别不了的纯偏好描述
var conventionSamples = []domain.Convention{
	{Title: "No Night Shifts", Description: "Cannot work night shifts (10 PM - 6 AM) due to medical condition", Type: domain.ConventionTypeMedical},
	{Title: "Maximum 40 Hours per Week", Description: "Legal limit of 40 hours per week", Type: domain.ConventionTypeLegal},
	{Title: "Maximum 5 Shifts per Week", Description: "No more than 5 shifts per week", Type: domain.ConventionTypeLegal},
	{Title: "No Weekend Work", Description: "Unavailable on weekends due to family obligations", Type: domain.ConventionTypeRestriction},
	{Title: "No Consecutive Shifts", Description: "Cannot work back-to-back days, needs rest between shifts", Type: domain.ConventionTypeMedical},
	{Title: "Monday Unavailable", Description: "Cannot work on monday, attends training", Type: domain.ConventionTypeAvailability},
	{Title: "No Early Mornings", Description: "Cannot work early morning shifts", Type: domain.ConventionTypeRestriction},
	{Title: "Weekend Only Availability", Description: "Prefers to work only on weekends", Type: domain.ConventionTypeAvailability},
	{Title: "Prefers Pediatric Ward", Description: "Prefers assignments in the pediatric ward", Type: domain.ConventionTypeCustom},
}

func GenerateRandomConvention() *domain.Convention {
	sample := conventionSamples[rand.Intn(len(conventionSamples))]
	convention := sample
	convention.IsActive = true
	return &convention
}
