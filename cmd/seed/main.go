package main

import (
	"log"
	"os"
	"strings"
	"time"

	"clinic-booking-backend/internal/config"
	"clinic-booking-backend/internal/database"
	"clinic-booking-backend/internal/models"
	"clinic-booking-backend/internal/repository"
	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/brianvoe/gofakeit/v6"
)

const (
	doctorCount  = 8
	staffCount   = 3
	patientCount = 40
	seedPassword = "password123"
)

var specializations = []string{
	"General Practice",
	"Cardiology",
	"Dermatology",
	"Pediatrics",
	"Orthopedics",
	"Neurology",
	"Ophthalmology",
	"ENT",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg := config.LoadConfig()
	utils.SetBcryptCost(cfg.JWT.BcryptCost)
	db := database.Connect(cfg)

	userRepo := repository.NewUserRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	authService := service.NewAuthService(userRepo, auditRepo)
	availabilityService := service.NewAvailabilityService(repository.NewAvailabilityRepo(db), auditRepo)

	faker := gofakeit.New(0)

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@clinic.local"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = seedPassword
	}
	if _, err := authService.CreateAdmin(adminEmail, adminPassword); err != nil {
		log.Printf("admin not created: %v", err)
	} else {
		log.Printf("admin %s created", adminEmail)
	}

	doctors := seedAccounts(authService, faker, models.RoleDoctor, doctorCount)
	seedAccounts(authService, faker, models.RoleStaff, staffCount)
	seedAccounts(authService, faker, models.RolePatient, patientCount)

	if err := seedSlots(availabilityService, faker, doctors); err != nil {
		log.Fatalf("seed availabilities: %v", err)
	}

	log.Println("seed complete")
}

func seedAccounts(authService *service.AuthService, faker *gofakeit.Faker, role models.Role, count int) []*models.User {
	log.Printf("seeding %d %s accounts", count, role)

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		first, last := faker.FirstName(), faker.LastName()
		phone := faker.Phone()
		input := service.RegisterInput{
			Email:         strings.ToLower(first+"."+last) + "@" + string(role) + ".clinic.local",
			Password:      seedPassword,
			Role:          role,
			FirstName:     first,
			LastName:      last,
			ContactNumber: &phone,
		}
		if role == models.RoleDoctor {
			specialty := specializations[faker.Number(0, len(specializations)-1)]
			input.Specialization = &specialty
		}

		user, err := authService.Register(input)
		if err != nil {
			// Faker names repeat; a taken address is skipped
			log.Printf("skipping %s: %v", input.Email, err)
			continue
		}
		users = append(users, user)
	}
	return users
}

// seedSlots gives every doctor a weekly morning clinic for the next two weeks
func seedSlots(availabilityService *service.AvailabilityService, faker *gofakeit.Faker, doctors []*models.User) error {
	today := models.DateOf(time.Now())
	until := today.AddDays(14)

	for _, doctor := range doctors {
		actor := service.Actor{UserID: doctor.ID, Role: models.RoleDoctor}
		startHour := faker.Number(8, 11)
		for offset := 0; offset < 7; offset++ {
			day := today.AddDays(offset)
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
			for slot := 0; slot < 3; slot++ {
				hour := startHour + slot
				if _, err := availabilityService.Create(actor, service.AvailabilityInput{
					Date:        day,
					StartTime:   models.NewClockTime(hour, 0, 0),
					EndTime:     models.NewClockTime(hour, 30, 0),
					Repeat:      models.RepeatWeekly,
					RepeatUntil: &until,
				}); err != nil {
					return err
				}
			}
		}
		log.Printf("slots seeded for %s", doctor.Email)
	}
	return nil
}
