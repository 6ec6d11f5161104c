//go:build acceptance

package acceptance

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/leca/dt-petfriends/pkg/petfriends"
)

var _ = Describe("Pets", func() {
	var key string

	BeforeEach(func() {
		key = authKey()
	})

	Describe("listing", func() {
		It("returns a non-empty list of all pets", func() {
			resp, err := pf.ListPets(ctx, key, petfriends.FilterAll)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			pets, ok := resp.Pets()
			Expect(ok).To(BeTrue())
			Expect(pets).NotTo(BeEmpty())
		})

		It("returns a pets array for my_pets", func() {
			resp, err := pf.ListPets(ctx, key, petfriends.FilterMyPets)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.JSON).To(HaveKey("pets"))
		})
	})

	Describe("adding", func() {
		DescribeTable("accepts valid data",
			func(name string) {
				resp, err := pf.AddNewPet(ctx, key, name, "рысь", "2", ryskaPhoto)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
				Expect(resp.JSON).To(HaveKeyWithValue("name", name))
			},
			Entry("cyrillic name", "Рыся"),
			Entry("latin name", "Ryska"),
			Entry("name with spaces and digits", "Рыся 2"),
		)

		DescribeTable("rejects invalid data with 400",
			func(name, animalType, age, photo string) {
				resp, err := pf.AddNewPet(ctx, key, name, animalType, age, photo)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), resp.Raw)
			},
			Entry("age out of range", "Рыся", "рысь", "58456488", ryskaPhoto),
			Entry("photo file does not exist", "Рыся", "рысь", "2", missingPhoto),
			Entry("empty name", "", "рысь", "2", ryskaPhoto),
			Entry("empty animal type", "Рыся", "", "2", ryskaPhoto),
		)

		It("creates a pet without a photo and attaches one later", func() {
			resp, err := pf.AddPetSimple(ctx, key, "Сима", "кошка", "3")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
			pet, ok := resp.Pet()
			Expect(ok).To(BeTrue())

			resp, err = pf.SetPhoto(ctx, key, pet.ID, siamcatPhoto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
			Expect(resp.JSON).To(HaveKeyWithValue("id", pet.ID))
			Expect(resp.JSON["pet_photo"]).NotTo(BeEmpty())
		})
	})

	Describe("deleting", func() {
		It("removes one of my pets", func() {
			pet := ensureMyPet(key, "Сима", "кошка", "3", siamcatPhoto)

			resp, err := pf.DeletePet(ctx, key, pet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			for _, p := range myPets(key) {
				Expect(p.ID).NotTo(Equal(pet.ID))
			}
		})
	})

	Describe("updating", func() {
		It("changes one of my pets", func() {
			ensureMyPet(key, "Рыся", "рысь", "2", ryskaPhoto)
			pet := myPets(key)[0]

			name, age := "Рысь", "3"
			if pet.Name == name && string(pet.Age) == age {
				// Identical data would be refused; change the age instead.
				age = "4"
			}

			resp, err := pf.UpdatePetInfo(ctx, key, pet.ID, name, "рысь", age)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
			Expect(resp.JSON).To(HaveKeyWithValue("name", name))
		})

		It("refuses identical data right after a create", Label("quirk"), func() {
			resp, err := pf.AddNewPet(ctx, key, "Рыся", "рысь", "2", ryskaPhoto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.Raw)
			pet, ok := resp.Pet()
			Expect(ok).To(BeTrue())

			resp, err = pf.UpdatePetInfo(ctx, key, pet.ID, "Рыся", "рысь", "2")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})
})
