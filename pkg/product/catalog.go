package product

import "nutriplan/entities"

// DefaultCatalog is the ingredient list written by `migrate seed`.
func DefaultCatalog() []entities.AvailableProduct {
	names := []string{
		"Рис", "Гречка", "Овсяные хлопья", "Макароны", "Хлеб цельнозерновой",
		"Куриное филе", "Говядина", "Индейка", "Треска", "Лосось", "Яйца",
		"Творог", "Молоко", "Кефир", "Йогурт натуральный", "Сыр",
		"Картофель", "Морковь", "Лук", "Капуста", "Брокколи", "Помидоры",
		"Огурцы", "Перец болгарский", "Кабачок", "Свёкла", "Чеснок",
		"Яблоки", "Бананы", "Апельсины", "Чечевица", "Фасоль",
		"Оливковое масло", "Подсолнечное масло", "Грецкие орехи", "Мёд",
	}
	products := make([]entities.AvailableProduct, 0, len(names))
	for _, n := range names {
		products = append(products, entities.AvailableProduct{Name: n, Region: "ru"})
	}
	return products
}
