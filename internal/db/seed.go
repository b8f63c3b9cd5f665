package db

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kassemshdy/aspire-library/internal/audit"
	"github.com/kassemshdy/aspire-library/internal/models"
)

// SeedPassword is shared by every sample account.
const SeedPassword = "library123"

type SeedResult struct {
	Skipped     bool
	Users       int
	Books       int
	OpenLoans   int
	ClosedLoans int
}

type seedBook struct {
	title, author, category string
	year                    int
	description             string
}

var seedUsers = []models.User{
	{Name: "Admin User", Email: "admin@library.com", Role: models.RoleAdmin},
	{Name: "Sarah Johnson", Email: "librarian@library.com", Role: models.RoleLibrarian},
	{Name: "Michael Chen", Email: "michael.chen@library.com", Role: models.RoleLibrarian},
	{Name: "Emily Davis", Email: "emily.davis@example.com", Role: models.RoleMember},
	{Name: "James Wilson", Email: "james.wilson@example.com", Role: models.RoleMember},
	{Name: "Sofia Rodriguez", Email: "sofia.rodriguez@example.com", Role: models.RoleMember},
	{Name: "David Kim", Email: "david.kim@example.com", Role: models.RoleMember},
}

var seedBooks = []seedBook{
	{"The Midnight Library", "Matt Haig", "Fiction", 2020, "Between life and death there is a library, and within that library, the shelves go on forever."},
	{"Where the Crawdads Sing", "Delia Owens", "Fiction", 2018, "A coming-of-age story of a young girl raised by the marshlands of North Carolina."},
	{"Educated", "Tara Westover", "Memoir", 2018, "A memoir about a young woman who leaves her survivalist family and goes on to earn a PhD from Cambridge."},
	{"Project Hail Mary", "Andy Weir", "Science Fiction", 2021, "A lone astronaut must save Earth from disaster in this gripping tale of survival."},
	{"Dune", "Frank Herbert", "Science Fiction", 1965, "The epic story of Paul Atreides and the desert planet Arrakis."},
	{"The Three-Body Problem", "Cixin Liu", "Science Fiction", 2008, "A secret military project sends signals into space to establish contact with aliens."},
	{"Foundation", "Isaac Asimov", "Science Fiction", 1951, "The first book in the Foundation series about the fall and rise of galactic civilizations."},
	{"The Name of the Wind", "Patrick Rothfuss", "Fantasy", 2007, "The tale of a magically gifted young man who grows to be a notorious wizard."},
	{"The Way of Kings", "Brandon Sanderson", "Fantasy", 2010, "The first book in the Stormlight Archive series."},
	{"Circe", "Madeline Miller", "Fantasy", 2018, "A reimagining of the life of Circe, the sorceress from Greek mythology."},
	{"Gone Girl", "Gillian Flynn", "Thriller", 2012, "A wife's disappearance becomes a media sensation and her husband is the prime suspect."},
	{"Big Little Lies", "Liane Moriarty", "Mystery", 2014, "Three women's seemingly perfect lives unravel to the point of murder."},
	{"Sapiens", "Yuval Noah Harari", "Non-Fiction", 2011, "A brief history of humankind from the Stone Age to the modern age."},
	{"Atomic Habits", "James Clear", "Self-Help", 2018, "An easy and proven way to build good habits and break bad ones."},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "Psychology", 2011, "Explores the two systems that drive the way we think and make decisions."},
	{"1984", "George Orwell", "Classic", 1949, "A dystopian novel and cautionary tale about totalitarianism."},
	{"Pride and Prejudice", "Jane Austen", "Classic", 1813, "A romantic novel of manners that critiques the British landed gentry."},
	{"The Book Thief", "Markus Zusak", "Historical Fiction", 2005, "Death narrates the story of a young girl in Nazi Germany who steals books."},
	{"Wolf Hall", "Hilary Mantel", "Historical Fiction", 2009, "Thomas Cromwell's rise to power in the court of Henry VIII."},
	{"Steve Jobs", "Walter Isaacson", "Biography", 2011, "The authorized biography of Apple co-founder Steve Jobs."},
	{"A Brief History of Time", "Stephen Hawking", "Science", 1988, "From the Big Bang to black holes, a landmark volume in science writing."},
	{"Cosmos", "Carl Sagan", "Science", 1980, "A journey through space and time exploring the universe and our place in it."},
	{"The Hunger Games", "Suzanne Collins", "Young Adult", 2008, "In a dystopian future, teens are forced to compete in a televised fight to the death."},
	{"The Shining", "Stephen King", "Horror", 1977, "A family's winter caretaking job at a haunted hotel turns deadly."},
	{"The Lean Startup", "Eric Ries", "Business", 2011, "How entrepreneurs use continuous innovation to create successful businesses."},
	{"Leaves of Grass", "Walt Whitman", "Poetry", 1855, "A poetry collection celebrating the human body and nature."},
}

const (
	seedOpenLoans   = 8
	seedClosedLoans = 8
)

// Seed loads sample users, books and loans. It does nothing when books
// already exist, unless force is set, in which case all rows are cleared first.
func Seed(db *gorm.DB, rec audit.Recorder, force bool, now time.Time) (SeedResult, error) {
	var existing int64
	if err := db.Model(&models.Book{}).Count(&existing).Error; err != nil {
		return SeedResult{}, errors.Wrap(err, "count books")
	}
	if existing > 0 && !force {
		return SeedResult{Skipped: true, Books: int(existing)}, nil
	}
	if existing > 0 {
		if err := Reset(db); err != nil {
			return SeedResult{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return SeedResult{}, errors.Wrap(err, "hash seed password")
	}

	var res SeedResult
	err = db.Transaction(func(tx *gorm.DB) error {
		users := make([]models.User, len(seedUsers))
		for i, u := range seedUsers {
			u.PasswordHash = string(hash)
			if err := tx.Create(&u).Error; err != nil {
				return errors.Wrapf(err, "seed user %s", u.Email)
			}
			users[i] = u
		}
		res.Users = len(users)

		librarians := []models.User{users[1], users[2]}
		members := users[3:]

		books := make([]models.Book, len(seedBooks))
		for i, sb := range seedBooks {
			category, year, description := sb.category, sb.year, sb.description
			b := models.Book{
				Title:         sb.title,
				Author:        sb.author,
				Category:      &category,
				PublishedYear: &year,
				Description:   &description,
				Status:        "AVAILABLE",
				CreatedAt:     now.Add(-time.Duration(len(seedBooks)-i) * time.Hour),
			}
			if err := tx.Create(&b).Error; err != nil {
				return errors.Wrapf(err, "seed book %s", sb.title)
			}
			if err := rec.Record(tx, audit.Entry{
				Action:     audit.ActionBookCreate,
				EntityType: audit.EntityBook,
				EntityID:   b.ID,
				UserID:     librarians[i%len(librarians)].ID,
				Metadata:   b,
			}); err != nil {
				return err
			}
			books[i] = b
		}
		res.Books = len(books)

		for i := 0; i < seedOpenLoans; i++ {
			member := members[i%len(members)]
			checkedOut := now.Add(-time.Duration(i+1) * 24 * time.Hour)
			loan := models.Loan{
				BookID:       books[i].ID,
				UserID:       member.ID,
				CheckedOutAt: checkedOut,
				DueAt:        checkedOut.Add(14 * 24 * time.Hour),
				Status:       "CHECKED_OUT",
			}
			if err := tx.Create(&loan).Error; err != nil {
				return errors.Wrap(err, "seed open loan")
			}
			if err := tx.Model(&books[i]).Update("status", "CHECKED_OUT").Error; err != nil {
				return errors.Wrap(err, "seed book status")
			}
			if err := rec.Record(tx, audit.Entry{
				Action:     audit.ActionLoanCheckout,
				EntityType: audit.EntityLoan,
				EntityID:   loan.ID,
				UserID:     member.ID,
				Metadata:   loan,
			}); err != nil {
				return err
			}
			res.OpenLoans++
		}

		for i := seedOpenLoans; i < seedOpenLoans+seedClosedLoans; i++ {
			member := members[i%len(members)]
			checkedOut := now.Add(-time.Duration(14+i*2) * 24 * time.Hour)
			returned := checkedOut.Add(time.Duration(3+i%10) * 24 * time.Hour)
			loan := models.Loan{
				BookID:       books[i].ID,
				UserID:       member.ID,
				CheckedOutAt: checkedOut,
				DueAt:        checkedOut.Add(14 * 24 * time.Hour),
				ReturnedAt:   &returned,
				Status:       "RETURNED",
			}
			if err := tx.Create(&loan).Error; err != nil {
				return errors.Wrap(err, "seed returned loan")
			}
			for _, action := range []string{audit.ActionLoanCheckout, audit.ActionLoanReturn} {
				if err := rec.Record(tx, audit.Entry{
					Action:     action,
					EntityType: audit.EntityLoan,
					EntityID:   loan.ID,
					UserID:     member.ID,
					Metadata:   loan,
				}); err != nil {
					return err
				}
			}
			res.ClosedLoans++
		}

		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	return res, nil
}
