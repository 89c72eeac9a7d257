package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/harvest-scheduler/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
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

func GenerateRandomPlanner(password string, emailDomainName string) (*domain.Planner, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	planner := &domain.Planner{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         domain.RolePlanner,
	}

	return planner, nil
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomCategory() domain.Category {
	return domain.Category(rand.Intn(3))
}

// 随机生成一个排班请求，工人数量 1~maxWorkers，地块数量 1~maxPlots，配额为 100~5000 千克
func GenerateRandomSchedulingRequest(plannerID int64, maxWorkers, maxPlots int) *domain.SchedulingRequest {
	req := &domain.SchedulingRequest{
		PlannerID:    plannerID,
		Productivity: make([]domain.Category, rand.Intn(maxWorkers)+1),
		Seed:         rand.Uint64(),
	}

	for i := range req.Productivity {
		req.Productivity[i] = GenerateRandomCategory()
	}

	plots := rand.Intn(maxPlots) + 1
	req.Slopes = make([]domain.Category, plots)
	req.Quotas = make([]float64, plots)
	for j := 0; j < plots; j++ {
		req.Slopes[j] = GenerateRandomCategory()
		req.Quotas[j] = float64(rand.Intn(4901) + 100)
	}

	return req
}
